package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Expense is one ledger record. BaseAmount is always derived from Amount and
// Rate by the ledger package and is never set independently.
type Expense struct {
	ID            uuid.UUID   `json:"id"`
	TripID        uuid.UUID   `json:"trip_id"`
	Title         string      `json:"title"`
	Amount        float64     `json:"amount"`
	Currency      string      `json:"currency"`
	Rate          float64     `json:"rate"`
	BaseAmount    int64       `json:"base_amount"`
	Category      string      `json:"category,omitempty"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	Payer         Member      `json:"payer"`
	Beneficiary   Beneficiary `json:"beneficiary"`
	Date          time.Time   `json:"date"` // zero when the date is unknown
	Location      string      `json:"location,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	ImageURL      string      `json:"image_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// EveryoneText is the interchange spelling of the Everyone beneficiary.
const EveryoneText = "ALL"

// Beneficiary is either everyone on the split roster or one specific member.
// The zero value is Everyone.
type Beneficiary struct {
	member Member
	single bool
}

// Everyone returns the beneficiary that splits an expense equally.
func Everyone() Beneficiary { return Beneficiary{} }

// Specific returns a beneficiary charging the whole amount to m.
func Specific(m Member) Beneficiary { return Beneficiary{member: m, single: true} }

// IsEveryone reports whether b is the equal-split beneficiary.
func (b Beneficiary) IsEveryone() bool { return !b.single }

// Member returns the specific member and true, or "" and false for Everyone.
func (b Beneficiary) Member() (Member, bool) { return b.member, b.single }

// String renders b in the interchange format.
func (b Beneficiary) String() string {
	if b.single {
		return string(b.member)
	}
	return EveryoneText
}

// ParseBeneficiary reads the interchange spelling. "ALL" and "全體" map to
// Everyone, anything else to that member. A member literally named "ALL"
// cannot be expressed in this format; the JSON API form does not have that
// ambiguity.
func ParseBeneficiary(s string) Beneficiary {
	s = strings.TrimSpace(s)
	switch s {
	case EveryoneText, "全體", "":
		return Everyone()
	}
	return Specific(Member(s))
}

type beneficiaryJSON struct {
	Kind   string `json:"kind"`
	Member Member `json:"member,omitempty"`
}

// MarshalJSON encodes b as {"kind":"everyone"} or {"kind":"member","member":"..."}.
func (b Beneficiary) MarshalJSON() ([]byte, error) {
	if b.single {
		return json.Marshal(beneficiaryJSON{Kind: "member", Member: b.member})
	}
	return json.Marshal(beneficiaryJSON{Kind: "everyone"})
}

// UnmarshalJSON accepts the tagged object form.
func (b *Beneficiary) UnmarshalJSON(data []byte) error {
	var v beneficiaryJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "everyone", "":
		*b = Everyone()
	case "member":
		if v.Member == "" {
			return fmt.Errorf("beneficiary: member kind requires a member name")
		}
		*b = Specific(v.Member)
	default:
		return fmt.Errorf("beneficiary: unknown kind %q", v.Kind)
	}
	return nil
}
