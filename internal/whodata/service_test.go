package whodata

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUploadStoresValidRows(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	csvBody := "Country,Year,Indicator,Value\n" +
		"Kenya,2021,Life expectancy,66.1\n" +
		"Kenya,2022,Life expectancy,66.5\n" +
		"Brazil,2021,Life expectancy,75.9\n"
	result, err := svc.Upload(context.Background(), strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.RecordsStored != 3 || len(result.RowErrors) != 0 {
		t.Fatalf("result = %+v", result)
	}

	recs, err := svc.List(context.Background(), Filter{Country: "kenya"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("kenya records = %d, want 2", len(recs))
	}
	if recs[0].Year != 2021 || recs[1].Year != 2022 {
		t.Fatalf("order = %d, %d", recs[0].Year, recs[1].Year)
	}
}

func TestUploadReportsRowErrors(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	csvBody := "country,year,indicator,value\n" +
		"Kenya,2021,Life expectancy,66.1\n" +
		"Kenya,not-a-year,Life expectancy,66.5\n" +
		",2021,Life expectancy,75.9\n"
	result, err := svc.Upload(context.Background(), strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.RecordsStored != 1 {
		t.Fatalf("stored = %d, want 1", result.RecordsStored)
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("row errors = %v", result.RowErrors)
	}
	if !strings.HasPrefix(result.RowErrors[0], "Row 2:") {
		t.Fatalf("row errors = %v", result.RowErrors)
	}
}

func TestUploadRejectsWrongColumns(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.Upload(context.Background(), strings.NewReader("a,b\n1,2\n"))
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
}

func TestUploadRejectsAllInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	csvBody := "country,year,indicator,value\nKenya,bad,Life expectancy,x\n"
	result, err := svc.Upload(context.Background(), strings.NewReader(csvBody))
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
	if len(result.RowErrors) != 1 {
		t.Fatalf("row errors = %v", result.RowErrors)
	}
}
