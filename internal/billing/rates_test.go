package billing_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"weighstation/internal/billing"
	"weighstation/internal/billing/billingmem"
	"weighstation/internal/weighclient"
)

func newTestWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, val := range row {
			col, err := excelize.ColumnNumberToName(c + 1)
			if err != nil {
				t.Fatalf("column name: %v", err)
			}
			f.SetCellValue(sheet, col+strconv.Itoa(r+1), val)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseRatesWorkbook(t *testing.T) {
	data := newTestWorkbook(t, [][]string{
		{"Product", "Rate", "Scope"},
		{"tomato", "5", "ALL"},
		{"potato", "3", "7"},
	})
	got, err := billing.ParseRatesWorkbook(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(got))
	}
	if got[0].Product != "tomato" || got[0].Scope != nil {
		t.Fatalf("unexpected first rate: %+v", got[0])
	}
	if got[1].Product != "potato" || got[1].Scope == nil || *got[1].Scope != 7 {
		t.Fatalf("unexpected second rate: %+v", got[1])
	}
}

func newTestController(t *testing.T) *billing.Controller {
	t.Helper()
	store := billingmem.New()
	svc := billing.NewService(store, weighclient.New("http://unused.invalid", time.Second))
	ratesPath := filepath.Join(t.TempDir(), "rates.xlsx")
	return billing.NewController(svc, logrus.New(), ratesPath)
}

// TestRatesRoundTripIsVerbatim asserts GET /rates serves back the exact
// bytes last uploaded via POST /rates, not a regenerated workbook.
func TestRatesRoundTripIsVerbatim(t *testing.T) {
	c := newTestController(t)
	uploaded := newTestWorkbook(t, [][]string{
		{"Product", "Rate", "Scope"},
		{"tomato", "5", "ALL"},
	})

	uploadReq := httptest.NewRequest(http.MethodPost, "/rates", bytes.NewReader(uploaded))
	uploadRec := httptest.NewRecorder()
	c.UploadRates(uploadRec, uploadReq)
	if uploadRec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", uploadRec.Code, uploadRec.Body.String())
	}

	downloadReq := httptest.NewRequest(http.MethodGet, "/rates", nil)
	downloadRec := httptest.NewRecorder()
	c.DownloadRates(downloadRec, downloadReq)
	if downloadRec.Code != http.StatusOK {
		t.Fatalf("download status = %d", downloadRec.Code)
	}
	got, err := io.ReadAll(downloadRec.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if !bytes.Equal(got, uploaded) {
		t.Fatalf("downloaded bytes differ from uploaded bytes")
	}
}

// TestDownloadRatesNotFoundBeforeAnyUpload matches spec.md's 404 case for
// GET /rates when no workbook has ever been uploaded.
func TestDownloadRatesNotFoundBeforeAnyUpload(t *testing.T) {
	c := newTestController(t)
	req := httptest.NewRequest(http.MethodGet, "/rates", nil)
	rec := httptest.NewRecorder()
	c.DownloadRates(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestParseRatesWorkbookMissingColumns(t *testing.T) {
	f := newTestWorkbook(t, [][]string{{"Product", "Rate"}, {"tomato", "5"}})
	if _, err := billing.ParseRatesWorkbook(f); err == nil {
		t.Fatalf("expected error for missing Scope column")
	}
}
