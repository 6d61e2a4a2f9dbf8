package domain

import "time"

// Reconciliation is the journal entry written after a successful refresh.
type Reconciliation struct {
	ID         int64
	At         time.Time
	Tickers    []string
	Positions  int
	ValueOwned float64
	ValuePaid  float64
	Balance    float64
}

// AcquisitionStatus is the outcome of one selected ticker in a run.
type AcquisitionStatus string

const (
	AcquisitionBought  AcquisitionStatus = "BOUGHT"
	AcquisitionSkipped AcquisitionStatus = "SKIPPED"
)

// AcquisitionRecord is one journal line of an acquisition run.
type AcquisitionRecord struct {
	RunID    string
	At       time.Time
	Ticker   string
	Score    float64
	Price    float64
	Quantity int
	Status   AcquisitionStatus
	Reason   string
}
