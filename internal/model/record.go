package model

// CandidateFile is a spreadsheet link discovered on the source listing
// page, not yet downloaded.
type CandidateFile struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// IndexRecord is the persisted per-file summary derived from the first
// data row of a candidate's first sheet. Bank and IFSCPrefix are empty
// when the file could not be downloaded or parsed.
type IndexRecord struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Bank       string `json:"bank"`
	IFSCPrefix string `json:"ifsc_prefix"`
}

// BranchRow is the fixed output shape of every lookup. Field order is
// part of the API contract and must not change.
type BranchRow struct {
	Bank    string `json:"BANK"`
	IFSC    string `json:"IFSC"`
	Branch  string `json:"BRANCH"`
	Address string `json:"ADDRESS"`
	City1   string `json:"CITY1"`
	City2   string `json:"CITY2"`
	State   string `json:"STATE"`
	STDCode string `json:"STD CODE"`
	Phone   string `json:"PHONE"`
}
