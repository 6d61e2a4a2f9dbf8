package domain

import "github.com/shopspring/decimal"

// DefaultStartingBalance is the cash a new ledger starts with.
const DefaultStartingBalance = 10000.0

// LoadResult tells whether a ledger came from storage or was created fresh.
type LoadResult int

const (
	Loaded LoadResult = iota
	Initialized
)

func (r LoadResult) String() string {
	if r == Initialized {
		return "initialized"
	}
	return "loaded"
}

// SellMode selects how many rows a sale removes.
type SellMode string

const (
	// SellExact removes exactly the requested quantity, lowest id first.
	SellExact SellMode = "exact"
	// SellAll removes every row of the ticker once the holdings check passes.
	SellAll SellMode = "all"
)

// RefreshMode selects how reconciliation moves the cash balance.
type RefreshMode string

const (
	// RefreshIncremental moves balance by the change in ValueIncrease since the
	// previous refresh, so refreshing twice at the same price adds nothing.
	RefreshIncremental RefreshMode = "incremental"
	// RefreshCumulative adds the full ValueIncrease of every row on every refresh.
	RefreshCumulative RefreshMode = "cumulative"
)

// LedgerState is the durable unit: positions, cash and the id sequence are
// always persisted together.
type LedgerState struct {
	Positions []Position
	Balance   float64
	NextID    int64
}

// NewLedgerState returns an empty ledger holding startingBalance in cash.
func NewLedgerState(startingBalance float64) LedgerState {
	return LedgerState{Balance: startingBalance}
}

// Clone returns a deep copy so mutations can be staged before persisting.
func (s LedgerState) Clone() LedgerState {
	out := s
	out.Positions = make([]Position, len(s.Positions))
	copy(out.Positions, s.Positions)
	return out
}

// AddBalance applies delta to the balance using decimal arithmetic.
func (s *LedgerState) AddBalance(delta float64) {
	b, _ := decimal.NewFromFloat(s.Balance).Add(decimal.NewFromFloat(delta)).Float64()
	s.Balance = b
}
