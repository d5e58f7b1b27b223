package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoSave(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("p1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	result := AnalysisResult{
		PatientID:           "p1",
		AnalysisDate:        time.Now().UTC(),
		SuspectedConditions: []string{"Pneumonia"},
		ConfidenceLevel:     ConfidenceMedium,
	}
	if err := repo.Save(context.Background(), result); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByPatient(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	stored := AnalysisResult{
		PatientID:           "p2",
		SuspectedConditions: []string{"Migraine"},
		ConfidenceLevel:     ConfidenceHigh,
	}
	payload, _ := json.Marshal(stored)

	mock.ExpectQuery(`SELECT result FROM analyses`).
		WithArgs("p2").
		WillReturnRows(sqlmock.NewRows([]string{"result"}).AddRow(payload))

	repo := &PGRepo{DB: db}
	got, err := repo.GetByPatient(context.Background(), "p2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PatientID != "p2" || got.ConfidenceLevel != ConfidenceHigh {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestPGRepoGetByPatientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT result FROM analyses`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"result"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByPatient(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
