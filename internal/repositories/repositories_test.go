package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newRun(kind, path string) *models.RunRecord {
	return &models.RunRecord{Kind: kind, Path: path, Fingerprint: "abc123", SongCount: 3}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "report_runs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestGenreRepository(t *testing.T) {
	t.Run("Load empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		entries, err := NewGenreRepository(db).Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %v", entries)
		}
	})

	t.Run("Put and Load", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGenreRepository(db)
		if err := repo.Put("a1", []string{"rock", "indie"}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		if err := repo.Put("a2", nil); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		entries, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if got := entries["a1"]; len(got) != 2 || got[0] != "rock" || got[1] != "indie" {
			t.Errorf("expected [rock indie], got %v", got)
		}
		if got, ok := entries["a2"]; !ok || got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil genres for a2, got %v (present=%v)", got, ok)
		}
	})

	t.Run("Put replaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGenreRepository(db)
		if err := repo.Put("a1", []string{"rock"}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		if err := repo.Put("a1", []string{"jazz"}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 row, got %d", n)
		}

		entries, _ := repo.Load()
		if got := entries["a1"]; len(got) != 1 || got[0] != "jazz" {
			t.Errorf("expected [jazz], got %v", got)
		}
	})

	t.Run("Put requires artist id", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewGenreRepository(db).Put("", []string{"pop"}); err == nil {
			t.Error("expected error for empty artist id")
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("library", "reports/library_report.json")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence)
		}
		if run.CreatedAt.IsZero() {
			t.Error("created_at should be set after creation")
		}
	})

	t.Run("Create validates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := newRun("library", "out.json")
		run.Fingerprint = ""
		if err := NewRunRepository(db).Create(run); err == nil {
			t.Fatal("expected validation error for empty fingerprint")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("history", "reports/history_report.csv")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Path != run.Path || got.Kind != run.Kind || got.SongCount != 3 {
			t.Errorf("unexpected run %+v", got)
		}

		if _, err := repo.Get("nonexistent"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List and Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, kind := range []string{"library", "history", "library"} {
			if err := repo.Create(newRun(kind, kind+".json")); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		all, err := repo.List("", 0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(all))
		}
		if all[0].Sequence != 3 || all[2].Sequence != 1 {
			t.Errorf("expected newest first, got sequences %d..%d", all[0].Sequence, all[2].Sequence)
		}

		library, err := repo.List("library", 1)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(library) != 1 || library[0].Sequence != 3 {
			t.Errorf("expected latest library run, got %+v", library)
		}

		latest, err := repo.Latest("history")
		if err != nil {
			t.Fatalf("failed to get latest: %v", err)
		}
		if latest.Sequence != 2 {
			t.Errorf("expected sequence 2, got %d", latest.Sequence)
		}

		if _, err := repo.Latest("missing"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}
