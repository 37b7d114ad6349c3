package dto

// Skip reasons recorded by the annotation pipeline. Pages skipped because the
// buyer has no bin assignment use the buyer's username as the reason instead.
const (
	SkipNoUsername    = "no_username"
	SkipNoAddressData = "no_address_data"
)

// Identity is the buyer identification recovered from an order-boundary page.
// Username is the join key against bin assignments, always lowercased and
// trimmed. FirstName is only populated for pickup labels, where the person
// sorting physical bags matches by first name.
type Identity struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
}

// Identified reports whether a usable buyer identity was found.
func (i Identity) Identified() bool {
	return i.Username != ""
}

// Address is a structured mailing address parsed from a label page.
// Free-text fields are title-cased; State and Country are uppercased.
type Address struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
}

// SkippedPage records a page the pipeline could not fully process.
// PageIndex is zero-based. Skips never abort a run.
type SkippedPage struct {
	PageIndex int    `json:"page_index"`
	Reason    string `json:"reason"`
}

// AnnotateResult summarizes one annotation run.
type AnnotateResult struct {
	TotalPages     int           `json:"total_pages"`
	MailingEntries int           `json:"mailing_entries"`
	SkippedPages   []SkippedPage `json:"skipped_pages"`
	OutputPath     string        `json:"output_path"`
}
