package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "enterprise", "Sarah", "Acme Corp", "sarah@acme.com", "", "2000 employees", "normal", "handoff").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	lead, err := repo.Create(context.Background(), &CreateLeadRequest{
		LeadType: LeadTypeEnterprise,
		Name:     "Sarah",
		Company:  "Acme Corp",
		Email:    "sarah@acme.com",
		Details:  "2000 employees",
		Source:   "handoff",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected generated id")
	}
	if !lead.CreatedAt.Equal(created) {
		t.Errorf("expected db timestamp, got %v", lead.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateValidatesBeforeInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	_, err = repo.Create(context.Background(), &CreateLeadRequest{LeadType: "vip", Name: "Sarah"})
	if !errors.Is(err, ErrInvalidLeadType) {
		t.Fatalf("expected ErrInvalidLeadType, got %v", err)
	}

	// No query expectation was set: validation must short-circuit the insert.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db traffic: %v", err)
	}
}

func TestPostgresGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cols := []string{"id", "lead_type", "name", "company", "email", "phone", "details", "priority", "source", "created_at"}
	mock.ExpectQuery("SELECT id, lead_type, name").
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("lead-1", "smb", "Dana", "Birch Ltd", "dana@birch.io", "", "team plan", "normal", "api", created))

	lead, err := repo.GetByID(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if lead.LeadType != LeadTypeSMB || lead.Name != "Dana" {
		t.Errorf("unexpected lead %+v", lead)
	}

	mock.ExpectQuery("SELECT id, lead_type, name").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cols := []string{"id", "lead_type", "name", "company", "email", "phone", "details", "priority", "source", "created_at"}
	mock.ExpectQuery("SELECT id, lead_type, name").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("lead-2", "individual", "Erin", "", "erin@mail.com", "", "", "normal", "api", created.Add(time.Minute)).
			AddRow("lead-1", "smb", "Dana", "Birch Ltd", "dana@birch.io", "", "", "normal", "api", created))

	leads, err := repo.List(context.Background(), 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}
	if leads[0].ID != "lead-2" {
		t.Errorf("expected newest first, got %s", leads[0].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
