package domain

// InterchangeRow is one expense in the import/export format. All values are
// text so that a CSV file and a JSON document map onto it the same way;
// Amount and Rate are parsed leniently by the ledger on import.
type InterchangeRow struct {
	Date        string `json:"date"` // "2006-01-02"
	Title       string `json:"title"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Rate        string `json:"rate"`
	Payer       string `json:"payer"`
	Beneficiary string `json:"beneficiary"` // "ALL" or a member name
	Note        string `json:"note"`
}

// InterchangeColumns is the column order of the CSV form.
var InterchangeColumns = []string{
	"date", "title", "category", "amount", "currency", "rate", "payer", "beneficiary", "note",
}

// Category is a remembered expense category used for suggestions.
// Identity is the slug; Name keeps the casing of the first use.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
