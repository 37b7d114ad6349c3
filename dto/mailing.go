package dto

// MailingListEntry is one row of the mailing list. Dedup key is the strict
// address tuple (full_name, address_line_1, city, state, zip_code); repeat
// orders to the same destination accumulate Spent and NumOrders.
type MailingListEntry struct {
	ID           int64   `json:"id"`
	FullName     string  `json:"full_name"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	AddressLine1 string  `json:"address_line_1"`
	AddressLine2 string  `json:"address_line_2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
	Country      string  `json:"country"`
	OrderDate    string  `json:"order_date"` // YYYY-MM-DD
	OrderID      string  `json:"order_id"`
	NumOrders    int     `json:"num_orders"`
	Spent        float64 `json:"spent"`
	Checked      bool    `json:"checked"`
}

// MailingFilters narrows a mailing-list search. Zero values are ignored.
// Name, Username, City and State match as substrings; Date matches exactly.
type MailingFilters struct {
	Name     string   `form:"name"`
	Username string   `form:"username"`
	City     string   `form:"city"`
	State    string   `form:"state"`
	SpentMin *float64 `form:"spent_min"`
	SpentMax *float64 `form:"spent_max"`
	Date     string   `form:"date"`
}

// ImportSummary reports the outcome of a bulk email CSV import.
type ImportSummary struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// BinAssignment pairs a normalized username with its bin number.
type BinAssignment struct {
	Username  string `json:"username"`
	BinNumber int    `json:"bin_number"`
}
