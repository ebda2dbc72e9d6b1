package index

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
	"github.com/bankdir/ifsc-api/internal/links"
	"github.com/bankdir/ifsc-api/internal/model"
)

type fixedLister struct {
	items []model.CandidateFile
	calls int
}

func (f *fixedLister) List(_ context.Context) ([]model.CandidateFile, error) {
	f.calls++
	return f.items, nil
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

func newIndex(t *testing.T, lister links.CandidateLister) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in_banks.json")
	cache := links.NewCache(lister, time.Hour, nil)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, MaxRetries: 1})
	return New(path, cache, f, 1<<20)
}

func TestBuild_TotalDespitePerFileFailures(t *testing.T) {
	good := xlsxBytes(t, [][]string{
		{"BANK", "IFSC", "BRANCH"},
		{"Example Bank", "exb0001234", "Fort"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.xlsx":
			w.Write(good)
		case "/corrupt.xlsx":
			w.Write([]byte("not a spreadsheet"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	lister := &fixedLister{items: []model.CandidateFile{
		{Title: "Good", URL: srv.URL + "/good.xlsx"},
		{Title: "Missing", URL: srv.URL + "/missing.xlsx"},
		{Title: "Corrupt", URL: srv.URL + "/corrupt.xlsx"},
	}}
	ix := newIndex(t, lister)

	records, err := ix.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3, "build must emit one record per candidate")

	assert.Equal(t, "EXAMPLE BANK", records[0].Bank)
	assert.Equal(t, "EXB0", records[0].IFSCPrefix)

	for _, rec := range records[1:] {
		assert.Empty(t, rec.Bank)
		assert.Empty(t, rec.IFSCPrefix)
		assert.NotEmpty(t, rec.Title)
		assert.NotEmpty(t, rec.URL)
	}

	// The artifact is persisted wholesale.
	data, err := os.ReadFile(ix.Path())
	require.NoError(t, err)
	var persisted []model.IndexRecord
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, records, persisted)
}

func TestBuild_ShortIFSCYieldsNoPrefix(t *testing.T) {
	data := xlsxBytes(t, [][]string{
		{"BANK", "IFSC"},
		{"Tiny Bank", "EXB"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	lister := &fixedLister{items: []model.CandidateFile{{Title: "Tiny", URL: srv.URL + "/tiny.xlsx"}}}
	records, err := newIndex(t, lister).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TINY BANK", records[0].Bank)
	assert.Empty(t, records[0].IFSCPrefix)
}

func TestBuild_HeaderOnlySheet(t *testing.T) {
	data := xlsxBytes(t, [][]string{{"BANK", "IFSC"}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	lister := &fixedLister{items: []model.CandidateFile{{Title: "Empty", URL: srv.URL + "/empty.xlsx"}}}
	records, err := newIndex(t, lister).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Bank)
	assert.Empty(t, records[0].IFSCPrefix)
}

func TestLoad_ReadsPersistedWithoutBuilding(t *testing.T) {
	lister := &fixedLister{}
	ix := newIndex(t, lister)

	want := []model.IndexRecord{{Title: "T", URL: "http://x/a.xlsx", Bank: "EXAMPLE BANK", IFSCPrefix: "EXB0"}}
	b, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ix.Path(), b, 0o644))

	got, err := ix.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 0, lister.calls, "loading a valid artifact must not touch the network")
}

func TestLoad_CorruptArtifactRebuilds(t *testing.T) {
	data := xlsxBytes(t, [][]string{
		{"BANK", "IFSC"},
		{"Example Bank", "EXB0001234"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	lister := &fixedLister{items: []model.CandidateFile{{Title: "Good", URL: srv.URL + "/good.xlsx"}}}
	ix := newIndex(t, lister)
	require.NoError(t, os.WriteFile(ix.Path(), []byte("{{{ not json"), 0o644))

	records, err := ix.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "EXAMPLE BANK", records[0].Bank)
	assert.Equal(t, 1, lister.calls)
}

func TestLoad_MissingArtifactBuilds(t *testing.T) {
	data := xlsxBytes(t, [][]string{
		{"BANK", "IFSC"},
		{"Example Bank", "EXB0001234"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	lister := &fixedLister{items: []model.CandidateFile{{Title: "Good", URL: srv.URL + "/good.xlsx"}}}
	ix := newIndex(t, lister)

	records, err := ix.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = os.Stat(ix.Path())
	require.NoError(t, err, "build inside load must persist the artifact")
}
