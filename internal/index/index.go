// Package index builds, persists, and loads the per-file lookup index.
// One record is derived from the first data row of each candidate's
// first sheet.
package index

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bankdir/ifsc-api/internal/fetcher"
	"github.com/bankdir/ifsc-api/internal/links"
	"github.com/bankdir/ifsc-api/internal/model"
	"github.com/bankdir/ifsc-api/internal/schema"
)

// buildConcurrency bounds parallel candidate downloads during a rebuild.
const buildConcurrency = 4

// Index owns the persisted index artifact and knows how to rebuild it
// from the candidate list.
type Index struct {
	path     string
	cache    *links.Cache
	fetcher  fetcher.Fetcher
	maxBytes int64
}

// New creates an Index persisting to path.
func New(path string, cache *links.Cache, f fetcher.Fetcher, maxBytes int64) *Index {
	return &Index{path: path, cache: cache, fetcher: f, maxBytes: maxBytes}
}

// Build re-derives the full index from the candidate list and persists
// it, replacing any prior artifact. The build is total: a candidate
// whose download or parse fails still yields a record, with empty bank
// and prefix fields. Only a failed candidate listing or a failed persist
// aborts the build.
func (ix *Index) Build(ctx context.Context) ([]model.IndexRecord, error) {
	items, err := ix.cache.Candidates(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: list candidates")
	}

	records := make([]model.IndexRecord, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, item := range items {
		g.Go(func() error {
			rec := model.IndexRecord{Title: item.Title, URL: item.URL}
			bank, prefix, err := ix.summarize(gctx, item)
			if err != nil {
				zap.L().Warn("index: candidate failed, emitting empty record",
					zap.String("url", item.URL),
					zap.Error(err),
				)
			} else {
				rec.Bank = bank
				rec.IFSCPrefix = prefix
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	if err := ix.save(records); err != nil {
		return nil, err
	}

	zap.L().Info("index rebuilt", zap.Int("records", len(records)), zap.String("path", ix.path))
	return records, nil
}

// Load reads the persisted index, falling back to a full Build when the
// artifact is missing or corrupt.
func (ix *Index) Load(ctx context.Context) ([]model.IndexRecord, error) {
	data, err := os.ReadFile(ix.path)
	if err == nil {
		var records []model.IndexRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		zap.L().Warn("index: corrupt artifact, rebuilding", zap.String("path", ix.path))
	}
	return ix.Build(ctx)
}

// Path returns the location of the persisted artifact.
func (ix *Index) Path() string {
	return ix.path
}

// summarize reads the bank name and IFSC prefix from the first data row
// of the candidate's first sheet. A header-only or sheetless file is not
// an error; it just has nothing to contribute.
func (ix *Index) summarize(ctx context.Context, item model.CandidateFile) (bank, prefix string, err error) {
	data, err := ix.fetcher.DownloadLimited(ctx, item.URL, ix.maxBytes)
	if err != nil {
		return "", "", err
	}

	wb, err := fetcher.OpenWorkbook(data, item.URL)
	if err != nil {
		return "", "", err
	}
	if len(wb.SheetNames()) == 0 {
		return "", "", nil
	}

	rows, err := wb.Rows(0)
	if err != nil {
		return "", "", err
	}
	if len(rows) < 2 {
		return "", "", nil
	}
	header, first := rows[0], rows[1]

	bank = roleValue(header, first, schema.RoleBank)
	ifsc := roleValue(header, first, schema.RoleIFSC)
	if len(ifsc) >= 4 {
		prefix = ifsc[:4]
	}
	return bank, prefix, nil
}

func roleValue(header, row []string, role schema.Role) string {
	col, ok := schema.FindRoleColumn(header, role)
	if !ok || col >= len(row) {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(row[col]))
}

func (ix *Index) save(records []model.IndexRecord) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "index: marshal")
	}

	tmp := ix.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return eris.Wrap(err, "index: write artifact")
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		return eris.Wrap(err, "index: replace artifact")
	}
	return nil
}
