// Package domain contains the core data types for the trip planner.
// Apart from uuid it has no external dependencies and is imported by every
// other internal package (itinerary, ledger, repo, service, handler).
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Member is a roster entry. Members are identified by name.
type Member string

// Trip is the top-level aggregate. Days and the member roster are owned by
// the trip and are saved together as one document.
type Trip struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	DateRange    string    `json:"date_range,omitempty"`
	Timezone     string    `json:"timezone"`
	BaseCurrency string    `json:"base_currency"`
	Budget       *float64  `json:"budget,omitempty"` // nil when no budget is set
	Days         []Day     `json:"days"`
	Members      []Member  `json:"members"`
	// SharedFunds lists the roster entries that represent a communal pool.
	// They are credited when they pay but never take part in equal splits.
	SharedFunds []Member  `json:"shared_funds,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasMember reports whether m is on the roster.
func (t Trip) HasMember(m Member) bool {
	return slices.Contains(t.Members, m)
}
