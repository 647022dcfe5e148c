package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/repositories"
	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList prints the report run ledger, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("kind")
	if kind != "" {
		parsed, ok := models.ParseReportKind(kind)
		if !ok {
			return shared.NewValidationError("report type", kind)
		}
		kind = parsed.String()
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(kind, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		if runs == nil {
			runs = []*models.RunRecord{}
		}
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No reports written yet.\n")
	}

	r.writePlain("%-5s %-9s %-20s %-17s %7s  %s\n", "SEQ", "KIND", "CREATED", "FINGERPRINT", "SONGS", "PATH")
	for _, run := range runs {
		r.writePlain("%-5d %-9s %-20s %-17s %7d  %s\n",
			run.Sequence, run.Kind, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Fingerprint, run.SongCount, run.Path)
	}
	return nil
}
