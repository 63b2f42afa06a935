package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/ledger"
)

// Wire types for the JSON API. They follow the schemas in spec/openapi.yaml.
// Types whose domain JSON form already matches the schema (schedule items,
// beneficiaries, gaps, balances) are used directly.

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripRequest is the body of POST /trips and PUT /trips/{tripId}.
type TripRequest struct {
	Title        string   `json:"title"`
	DateRange    *string  `json:"date_range,omitempty"`
	Timezone     *string  `json:"timezone,omitempty"`
	BaseCurrency *string  `json:"base_currency,omitempty"`
	Budget       *float64 `json:"budget,omitempty"`
	Members      []string `json:"members"`
	SharedFunds  []string `json:"shared_funds,omitempty"`
}

// Trip is the response form of a trip document.
type Trip struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	DateRange    *string   `json:"date_range,omitempty"`
	Timezone     string    `json:"timezone"`
	BaseCurrency string    `json:"base_currency"`
	Budget       *float64  `json:"budget,omitempty"`
	Members      []string  `json:"members"`
	SharedFunds  []string  `json:"shared_funds"`
	Days         []Day     `json:"days"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TripList is the response of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TripSummary is the response of GET /trips/{tripId}/summary.
type TripSummary struct {
	Total      int64                  `json:"total"`
	Budget     *float64               `json:"budget,omitempty"`
	Progress   float64                `json:"progress"`
	Categories []ledger.CategoryTotal `json:"categories"`
}

// DayRequest is the body of POST /trips/{tripId}/days.
type DayRequest struct {
	Date  *openapi_types.Date `json:"date,omitempty"`
	Label *string             `json:"label,omitempty"`
}

// Day is the response form of a day.
type Day struct {
	Id    uuid.UUID             `json:"id"`
	Date  *openapi_types.Date   `json:"date,omitempty"`
	Label string                `json:"label"`
	Items []domain.ScheduleItem `json:"items"`
}

// DayView is a day with its idle gaps and the suggested start of the next item.
type DayView struct {
	Day       Day             `json:"day"`
	Gaps      []itinerary.Gap `json:"gaps"`
	NextStart string          `json:"next_start"`
}

// ReorderRequest is the body of POST .../reorder.
type ReorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// ExpenseRequest is the body of POST and PUT on expenses. Amount and rate
// accept a JSON number or text; text is parsed leniently.
type ExpenseRequest struct {
	Title         string              `json:"title"`
	Amount        NumberText          `json:"amount"`
	Currency      string              `json:"currency"`
	Rate          NumberText          `json:"rate"`
	Category      string              `json:"category,omitempty"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Payer         string              `json:"payer"`
	Beneficiary   *domain.Beneficiary `json:"beneficiary,omitempty"`
	Date          *openapi_types.Date `json:"date,omitempty"`
	Location      string              `json:"location,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	ImageURL      string              `json:"image_url,omitempty"`
}

// Expense is the response form of an expense.
type Expense struct {
	Id            uuid.UUID           `json:"id"`
	TripId        uuid.UUID           `json:"trip_id"`
	Title         string              `json:"title"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	Rate          float64             `json:"rate"`
	BaseAmount    int64               `json:"base_amount"`
	Category      string              `json:"category,omitempty"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Payer         string              `json:"payer"`
	Beneficiary   domain.Beneficiary  `json:"beneficiary"`
	Date          *openapi_types.Date `json:"date,omitempty"`
	Location      string              `json:"location,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	ImageURL      string              `json:"image_url,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Settlement is the response of GET /trips/{tripId}/settlement.
type Settlement struct {
	Total     int64             `json:"total"`
	Balances  []ledger.Balance  `json:"balances"`
	Transfers []ledger.Transfer `json:"transfers"`
}

// ImportResult is the response of POST /trips/{tripId}/import.
type ImportResult struct {
	Imported int       `json:"imported"`
	Data     []Expense `json:"data"`
}

// NumberText holds the raw text of a numeric field. It decodes from a JSON
// string or number; null and absence leave it empty.
type NumberText string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("number text: %w", err)
		}
		*n = NumberText(num.String())
	}
	return nil
}

// --- mapping helpers --------------------------------------------------------

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalDate(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: t}
}

func dateOrZero(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func members(names []string) []domain.Member {
	out := make([]domain.Member, len(names))
	for i, n := range names {
		out[i] = domain.Member(n)
	}
	return out
}

func names(ms []domain.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

// requestToTrip converts a TripRequest body into a domain.Trip.
func requestToTrip(id uuid.UUID, body TripRequest) domain.Trip {
	return domain.Trip{
		ID:           id,
		Title:        body.Title,
		DateRange:    derefString(body.DateRange),
		Timezone:     derefString(body.Timezone),
		BaseCurrency: derefString(body.BaseCurrency),
		Budget:       body.Budget,
		Members:      members(body.Members),
		SharedFunds:  members(body.SharedFunds),
	}
}

// tripToResponse converts a domain.Trip into the wire Trip type.
func tripToResponse(t domain.Trip) Trip {
	days := make([]Day, len(t.Days))
	for i, d := range t.Days {
		days[i] = dayToResponse(d)
	}
	return Trip{
		Id:           t.ID,
		Title:        t.Title,
		DateRange:    optionalString(t.DateRange),
		Timezone:     t.Timezone,
		BaseCurrency: t.BaseCurrency,
		Budget:       t.Budget,
		Members:      names(t.Members),
		SharedFunds:  names(t.SharedFunds),
		Days:         days,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func dayToResponse(d domain.Day) Day {
	items := d.Items
	if items == nil {
		items = []domain.ScheduleItem{}
	}
	return Day{Id: d.ID, Date: optionalDate(d.Date), Label: d.Label, Items: items}
}

func requestToExpenseInput(body ExpenseRequest) ledger.ExpenseInput {
	in := ledger.ExpenseInput{
		Title:         body.Title,
		Amount:        string(body.Amount),
		Currency:      body.Currency,
		Rate:          string(body.Rate),
		Category:      body.Category,
		PaymentMethod: body.PaymentMethod,
		Payer:         domain.Member(body.Payer),
		Date:          dateOrZero(body.Date),
		Location:      body.Location,
		Notes:         body.Notes,
		ImageURL:      body.ImageURL,
	}
	if body.Beneficiary != nil {
		in.Beneficiary = *body.Beneficiary
	}
	return in
}

func expenseToResponse(e domain.Expense) Expense {
	return Expense{
		Id:            e.ID,
		TripId:        e.TripID,
		Title:         e.Title,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Rate:          e.Rate,
		BaseAmount:    e.BaseAmount,
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		Payer:         string(e.Payer),
		Beneficiary:   e.Beneficiary,
		Date:          optionalDate(e.Date),
		Location:      e.Location,
		Notes:         e.Notes,
		ImageURL:      e.ImageURL,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func expensesToResponse(es []domain.Expense) []Expense {
	out := make([]Expense, len(es))
	for i, e := range es {
		out[i] = expenseToResponse(e)
	}
	return out
}
