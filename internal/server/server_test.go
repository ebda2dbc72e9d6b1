package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bankdir/ifsc-api/internal/fetcher"
	"github.com/bankdir/ifsc-api/internal/index"
	"github.com/bankdir/ifsc-api/internal/links"
	"github.com/bankdir/ifsc-api/internal/lookup"
	"github.com/bankdir/ifsc-api/internal/model"
)

type staticLister struct {
	items []model.CandidateFile
}

func (s *staticLister) List(_ context.Context) ([]model.CandidateFile, error) {
	if len(s.items) == 0 {
		return nil, links.ErrNoLinks
	}
	return s.items, nil
}

func xlsxBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().Value = v
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func newTestServer(t *testing.T, lister links.CandidateLister, records []model.IndexRecord) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in_banks.json")
	if records != nil {
		b, err := json.Marshal(records)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, b, 0o644))
	}
	cache := links.NewCache(lister, time.Hour, nil)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, MaxRetries: 1})
	ix := index.New(path, cache, f, 1<<20)
	return New(lookup.New(ix, f, 1<<20)).Router()
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &staticLister{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBanks(t *testing.T) {
	h := newTestServer(t, &staticLister{}, []model.IndexRecord{
		{Title: "A", URL: "http://x/a.xlsx", Bank: "EXAMPLE BANK", IFSCPrefix: "EXB0"},
		{Title: "B", URL: "http://x/b.xlsx", Bank: "OTHER BANK", IFSCPrefix: "OTH0"},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/banks", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"bank":"EXAMPLE BANK"},{"bank":"OTHER BANK"}]`, rec.Body.String())
}

func TestByBank_NotFound(t *testing.T) {
	h := newTestServer(t, &staticLister{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/by-bank?bank=", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no files matched the given bank"}`, rec.Body.String())
}

func TestByIFSC_ShortCode(t *testing.T) {
	h := newTestServer(t, &staticLister{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/by-ifsc?ifsc=SHORT", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no rows found for the given IFSC"}`, rec.Body.String())
}

func TestByBank_Success(t *testing.T) {
	sheet := xlsxBytes(t, [][]string{
		{"BANK", "IFSC", "BRANCH", "CITY1"},
		{"EXAMPLE BANK", "EXB0001234A", "FORT", "MUMBAI"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(sheet)
	}))
	defer srv.Close()

	h := newTestServer(t, &staticLister{}, []model.IndexRecord{
		{Title: "Example", URL: srv.URL + "/example.xlsx", Bank: "EXAMPLE BANK", IFSCPrefix: "EXB0"},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/by-bank?bank=example", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.BranchRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "EXAMPLE BANK", rows[0].Bank)
	assert.Equal(t, "MUMBAI", rows[0].City2)
}

func TestOutputFieldOrder(t *testing.T) {
	// The serialized field order is part of the API contract.
	b, err := json.Marshal(model.BranchRow{})
	require.NoError(t, err)
	assert.Equal(t, `{"BANK":"","IFSC":"","BRANCH":"","ADDRESS":"","CITY1":"","CITY2":"","STATE":"","STD CODE":"","PHONE":""}`, string(b))
}

func TestUpstreamListingFailureIs404(t *testing.T) {
	// No artifact and no links on the source page: the miss surfaces as
	// a not-found condition, not a server error.
	h := newTestServer(t, &staticLister{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/banks", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
