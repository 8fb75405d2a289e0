package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetOrCreateByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	candidate := User{ID: "new-id", Email: "dan@example.com", Username: "dan", CreatedAt: now}
	rows := sqlmock.NewRows([]string{"id", "email", "username", "created_at", "updated_at"}).
		AddRow("existing-id", "dan@example.com", "dan", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email")).
		WithArgs("new-id", "dan@example.com", "dan", now).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.GetOrCreateByEmail(context.Background(), candidate)
	if err != nil {
		t.Fatalf("GetOrCreateByEmail: %v", err)
	}
	if got.ID != "existing-id" {
		t.Fatalf("expected existing row, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
