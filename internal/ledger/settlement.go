package ledger

import (
	"cmp"
	"math"
	"slices"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Balance is a member's net position in base currency. Positive means the
// member should receive money, negative means they owe.
type Balance struct {
	Member domain.Member `json:"member"`
	Amount float64       `json:"amount"`
}

// Balances is ordered like the roster it was computed from.
type Balances []Balance

// Of returns m's balance, or 0 when m is not listed.
func (b Balances) Of(m domain.Member) float64 {
	for _, x := range b {
		if x.Member == m {
			return x.Amount
		}
	}
	return 0
}

// Sum adds up all balances. It is 0 unless some expense was only partly
// applied: a payer or beneficiary off the roster, or an equal split with
// nobody to split across.
func (b Balances) Sum() float64 {
	var s float64
	for _, x := range b {
		s += x.Amount
	}
	return s
}

// ComputeBalances credits each payer and debits each beneficiary.
//
// An expense for everyone is split equally across members minus sharedFunds;
// if that leaves nobody, only the payer credit is applied. Payers and
// beneficiaries missing from members are ignored. Shared funds are credited
// when they pay but never debited by an equal split, so a fund-paid expense
// for everyone is owed back to the fund in full.
func ComputeBalances(expenses []domain.Expense, members, sharedFunds []domain.Member) Balances {
	out := make(Balances, 0, len(members))
	pos := make(map[domain.Member]int, len(members))
	for _, m := range members {
		if _, dup := pos[m]; dup {
			continue
		}
		pos[m] = len(out)
		out = append(out, Balance{Member: m})
	}

	var splitSet []int
	for _, b := range out {
		if !slices.Contains(sharedFunds, b.Member) {
			splitSet = append(splitSet, pos[b.Member])
		}
	}

	for _, e := range expenses {
		amount := float64(e.BaseAmount)
		if i, ok := pos[e.Payer]; ok {
			out[i].Amount += amount
		}

		if m, single := e.Beneficiary.Member(); single {
			if i, ok := pos[m]; ok {
				out[i].Amount -= amount
			}
			continue
		}
		if len(splitSet) == 0 {
			continue
		}
		share := amount / float64(len(splitSet))
		for _, i := range splitSet {
			out[i].Amount -= share
		}
	}
	return out
}

// Transfer is one suggested payment that moves balances towards zero.
type Transfer struct {
	From   domain.Member `json:"from"`
	To     domain.Member `json:"to"`
	Amount float64       `json:"amount"`
}

// SuggestTransfers pairs the largest debtor with the largest creditor until
// one side runs out. Amounts are settled in cents; anything under a cent is
// dropped. When the balances do not sum to zero some credit stays unpaid.
func SuggestTransfers(balances Balances) []Transfer {
	type party struct {
		member domain.Member
		cents  int64
	}
	var debtors, creditors []party
	for _, b := range balances {
		c := int64(math.Round(b.Amount * 100))
		switch {
		case c < 0:
			debtors = append(debtors, party{b.Member, -c})
		case c > 0:
			creditors = append(creditors, party{b.Member, c})
		}
	}
	byCents := func(a, b party) int { return cmp.Compare(b.cents, a.cents) }
	slices.SortStableFunc(debtors, byCents)
	slices.SortStableFunc(creditors, byCents)

	var out []Transfer
	for i, j := 0, 0; i < len(debtors) && j < len(creditors); {
		pay := min(debtors[i].cents, creditors[j].cents)
		out = append(out, Transfer{
			From:   debtors[i].member,
			To:     creditors[j].member,
			Amount: float64(pay) / 100,
		})
		debtors[i].cents -= pay
		creditors[j].cents -= pay
		if debtors[i].cents == 0 {
			i++
		}
		if creditors[j].cents == 0 {
			j++
		}
	}
	return out
}
