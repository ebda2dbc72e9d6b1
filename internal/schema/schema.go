// Package schema maps heterogeneous source spreadsheet headers onto the
// fixed branch-row output shape.
package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/bankdir/ifsc-api/internal/model"
)

// Role names a semantic column the index builder and lookup flows need
// to locate in a source header.
type Role string

// The two roles every source sheet is probed for.
const (
	RoleBank Role = "bank"
	RoleIFSC Role = "ifsc"
)

// canonMap maps lower-cased, trimmed source header synonyms to canonical
// output fields.
var canonMap = map[string]string{
	"bank": "BANK", "bank name": "BANK",
	"ifsc": "IFSC", "ifsc code": "IFSC",
	"branch": "BRANCH", "branch name": "BRANCH",
	"address": "ADDRESS", "address1": "ADDRESS", "address line": "ADDRESS",
	"city": "CITY1", "city1": "CITY1", "city 1": "CITY1",
	"city2": "CITY2", "city 2": "CITY2",
	"centre": "CITY1", "district": "CITY2",
	"state":    "STATE",
	"std code": "STD CODE", "std": "STD CODE", "stdcode": "STD CODE",
	"phone": "PHONE", "phone no": "PHONE", "phone number": "PHONE",
	"telephone": "PHONE", "telephone no": "PHONE",
	"contact": "PHONE", "contact no": "PHONE", "mobile": "PHONE",
}

// FindRoleColumn locates the column serving the given role. An exact
// case-insensitive match on the role token wins over the first column
// merely containing it as a substring.
func FindRoleColumn(cols []string, role Role) (int, bool) {
	token := string(role)
	for i, c := range cols {
		if strings.ToLower(strings.TrimSpace(c)) == token {
			return i, true
		}
	}
	for i, c := range cols {
		if strings.Contains(strings.ToLower(strings.TrimSpace(c)), token) {
			return i, true
		}
	}
	return 0, false
}

// CanonicalRow maps one raw sheet row onto the fixed output shape. Every
// header is lower-cased, trimmed, and looked up in the synonym table; a
// later header mapping to an already-written field overwrites it. After
// mapping, a sole primary locality is copied into the secondary slot,
// the IFSC is upper-cased, and number-like contact fields are coerced.
func CanonicalRow(header []string, cells []string) model.BranchRow {
	var out model.BranchRow
	for i, h := range header {
		if i >= len(cells) {
			break
		}
		target, ok := canonMap[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		setField(&out, target, strings.TrimSpace(cells[i]))
	}

	if out.City1 != "" && out.City2 == "" {
		out.City2 = out.City1
	}
	out.IFSC = strings.ToUpper(out.IFSC)
	out.STDCode = coerceNumberLike(out.STDCode)
	out.Phone = coerceNumberLike(out.Phone)

	return out
}

func setField(row *model.BranchRow, field, value string) {
	switch field {
	case "BANK":
		row.Bank = value
	case "IFSC":
		row.IFSC = value
	case "BRANCH":
		row.Branch = value
	case "ADDRESS":
		row.Address = value
	case "CITY1":
		row.City1 = value
	case "CITY2":
		row.City2 = value
	case "STATE":
		row.State = value
	case "STD CODE":
		row.STDCode = value
	case "PHONE":
		row.Phone = value
	}
}

// coerceNumberLike renders an integer-valued numeric string as a plain
// integer, dropping the ".0" artifacts spreadsheet numeric storage
// introduces. Anything non-numeric passes through trimmed.
func coerceNumberLike(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return t
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return t
}
