// Package lookup resolves bank and IFSC queries against the index,
// downloads the one matching file, and normalizes its rows.
package lookup

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bankdir/ifsc-api/internal/fetcher"
	"github.com/bankdir/ifsc-api/internal/index"
	"github.com/bankdir/ifsc-api/internal/model"
	"github.com/bankdir/ifsc-api/internal/schema"
)

// ifscLength is the canonical length of a full IFSC. Shorter queries are
// rejected before touching the network.
const ifscLength = 11

// NoMatchError is the single user-visible failure for every
// could-not-find outcome, regardless of the underlying cause. Reason is
// flow-specific.
type NoMatchError struct {
	Reason string
}

func (e *NoMatchError) Error() string { return e.Reason }

const (
	reasonBank  = "no files matched the given bank"
	reasonIFSC  = "no rows found for the given IFSC"
	reasonBanks = "no banks found"
)

func noMatch(reason string) error { return &NoMatchError{Reason: reason} }

// Service answers lookups using the index, fetching at most one source
// file per request.
type Service struct {
	index    *index.Index
	fetcher  fetcher.Fetcher
	maxBytes int64
}

// New creates a lookup Service.
func New(ix *index.Index, f fetcher.Fetcher, maxBytes int64) *Service {
	return &Service{index: ix, fetcher: f, maxBytes: maxBytes}
}

// Banks returns the deduplicated upper-cased bank names known to the
// index, in index order.
func (s *Service) Banks(ctx context.Context) ([]string, error) {
	records, err := s.index.Load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		b := strings.ToUpper(strings.TrimSpace(r.Bank))
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, noMatch(reasonBanks)
	}
	return out, nil
}

// ByBank returns every normalized row of the first indexed file whose
// bank name contains the query, case-insensitively. The file's rows are
// returned whole; the per-file bank name is uniform across them.
func (s *Service) ByBank(ctx context.Context, bank string) ([]model.BranchRow, error) {
	query := strings.ToUpper(strings.TrimSpace(bank))
	if query == "" {
		return nil, noMatch(reasonBank)
	}

	rec, err := s.resolve(ctx, reasonBank, func(r model.IndexRecord) bool {
		return strings.Contains(strings.ToUpper(r.Bank), query)
	})
	if err != nil {
		return nil, err
	}

	header, rows, err := s.fetchSheet(ctx, rec)
	if err != nil {
		zap.L().Warn("bank lookup: fetch after resolution failed",
			zap.String("url", rec.URL),
			zap.Error(err),
		)
		return nil, noMatch(reasonBank)
	}

	out := make([]model.BranchRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, schema.CanonicalRow(header, row))
	}
	return out, nil
}

// ByIFSC returns the normalized rows whose IFSC equals the query
// exactly. The query must be a full-length IFSC; its first four
// characters select the file via the index.
func (s *Service) ByIFSC(ctx context.Context, ifsc string) ([]model.BranchRow, error) {
	code := strings.ToUpper(strings.TrimSpace(ifsc))
	if len(code) < ifscLength {
		return nil, noMatch(reasonIFSC)
	}
	prefix := code[:4]

	rec, err := s.resolve(ctx, reasonIFSC, func(r model.IndexRecord) bool {
		return r.IFSCPrefix == prefix
	})
	if err != nil {
		return nil, err
	}

	header, rows, err := s.fetchSheet(ctx, rec)
	if err != nil {
		zap.L().Warn("ifsc lookup: fetch after resolution failed",
			zap.String("url", rec.URL),
			zap.Error(err),
		)
		return nil, noMatch(reasonIFSC)
	}

	// The full sheet header may expose an IFSC column the build-time
	// first-row probe did not.
	col, ok := schema.FindRoleColumn(header, schema.RoleIFSC)
	if !ok {
		return nil, noMatch(reasonIFSC)
	}

	var out []model.BranchRow
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(row[col])) == code {
			out = append(out, schema.CanonicalRow(header, row))
		}
	}
	if len(out) == 0 {
		return nil, noMatch(reasonIFSC)
	}
	return out, nil
}

// resolve finds the first index record satisfying pred, rebuilding the
// index exactly once on a miss before giving up.
func (s *Service) resolve(ctx context.Context, reason string, pred func(model.IndexRecord) bool) (model.IndexRecord, error) {
	records, err := s.index.Load(ctx)
	if err != nil {
		return model.IndexRecord{}, err
	}
	if rec, ok := firstMatch(records, pred); ok {
		return rec, nil
	}

	records, err = s.index.Build(ctx)
	if err != nil {
		return model.IndexRecord{}, err
	}
	if rec, ok := firstMatch(records, pred); ok {
		return rec, nil
	}
	return model.IndexRecord{}, noMatch(reason)
}

func firstMatch(records []model.IndexRecord, pred func(model.IndexRecord) bool) (model.IndexRecord, bool) {
	for _, r := range records {
		if pred(r) {
			return r, true
		}
	}
	return model.IndexRecord{}, false
}

// fetchSheet downloads the record's file and returns the first sheet's
// header row and data rows. A sheetless or header-only file is an error
// here; by this point the caller has committed to this one file.
func (s *Service) fetchSheet(ctx context.Context, rec model.IndexRecord) (header []string, rows [][]string, err error) {
	data, err := s.fetcher.DownloadLimited(ctx, rec.URL, s.maxBytes)
	if err != nil {
		return nil, nil, err
	}

	wb, err := fetcher.OpenWorkbook(data, rec.URL)
	if err != nil {
		return nil, nil, err
	}
	if len(wb.SheetNames()) == 0 {
		return nil, nil, noMatch("file has no sheets")
	}

	all, err := wb.Rows(0)
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, noMatch("first sheet has no data rows")
	}
	return all[0], all[1:], nil
}
