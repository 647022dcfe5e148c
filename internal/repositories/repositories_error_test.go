package repositories

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var errDriver = errors.New("driver failure")

func TestGenreRepositoryErrors(t *testing.T) {
	t.Run("Load", func(t *testing.T) {
		t.Run("QueryError", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta("SELECT artist_id, genres FROM artist_genres")).WillReturnError(errDriver)

			_, err = NewGenreRepository(db).Load()
			if !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})

		t.Run("CorruptGenres", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			rows := sqlmock.NewRows([]string{"artist_id", "genres"}).AddRow("a1", "not json")
			mock.ExpectQuery(regexp.QuoteMeta("SELECT artist_id, genres FROM artist_genres")).WillReturnRows(rows)

			_, err = NewGenreRepository(db).Load()
			if err == nil || !strings.Contains(err.Error(), "a1") {
				t.Fatalf("expected decode error naming the artist, got %v", err)
			}
		})
	})

	t.Run("Put", func(t *testing.T) {
		t.Run("ExecError", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectExec(regexp.QuoteMeta("INSERT OR REPLACE INTO artist_genres")).
				WithArgs("a1", `["pop"]`, sqlmock.AnyArg()).
				WillReturnError(errDriver)

			err = NewGenreRepository(db).Put("a1", []string{"pop"})
			if !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	})
}

func TestRunRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("SequenceError", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE report_runs_sequence SET value = value + 1")).WillReturnError(errDriver)
			mock.ExpectRollback()

			err = NewRunRepository(db).Create(newRun("library", "out.json"))
			if err == nil || !strings.Contains(err.Error(), "sequence") {
				t.Fatalf("expected sequence error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})

		t.Run("InsertError", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE report_runs_sequence SET value = value + 1")).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM report_runs_sequence")).
				WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))
			mock.ExpectCommit()
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs")).WillReturnError(errDriver)

			run := newRun("library", "out.json")
			err = NewRunRepository(db).Create(run)
			if !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
			if run.Sequence != 7 {
				t.Errorf("expected sequence 7 assigned before insert, got %d", run.Sequence)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("QueryError", func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectQuery("SELECT id, sequence, kind").WillReturnError(errDriver)

			if _, err := NewRunRepository(db).List("", 0); !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
		})
	})
}
