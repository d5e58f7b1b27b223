package whodata

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoSaveAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO who_indicators`).
		WithArgs("id-1", "Kenya", 2021, "Life expectancy", 66.1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO who_indicators`).
		WithArgs("id-2", "Brazil", 2021, "Life expectancy", 75.9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	recs := []WHORecord{
		{ID: "id-1", Country: "Kenya", Year: 2021, Indicator: "Life expectancy", Value: 66.1, UploadedAt: time.Now().UTC()},
		{ID: "id-2", Country: "Brazil", Year: 2021, Indicator: "Life expectancy", Value: 75.9, UploadedAt: time.Now().UTC()},
	}
	if err := repo.SaveAll(context.Background(), recs); err != nil {
		t.Fatalf("save all: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListWithFilter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "country", "year", "indicator", "value", "uploaded_at"}).
		AddRow("id-1", "Kenya", 2021, "Life expectancy", 66.1, time.Now().UTC())
	mock.ExpectQuery(`SELECT id, country, year, indicator, value, uploaded_at FROM who_indicators`).
		WithArgs("Kenya", 2021).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.List(context.Background(), Filter{Country: "Kenya", Year: 2021})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Country != "Kenya" {
		t.Fatalf("got = %+v", got)
	}
}
