package ports

import (
	"context"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// LedgerStorage persiste posiciones y balance como una única unidad.
type LedgerStorage interface {
	// LoadLedger returns the stored state; found is false when nothing has
	// been saved yet.
	LoadLedger(ctx context.Context) (state domain.LedgerState, found bool, err error)

	// SaveLedger replaces positions, balance and id sequence atomically.
	SaveLedger(ctx context.Context, state domain.LedgerState) error
}

// Journal records reconciliations and acquisition runs for reporting.
type Journal interface {
	SaveReconciliation(ctx context.Context, r domain.Reconciliation) error
	GetReconciliations(ctx context.Context, limit int) ([]domain.Reconciliation, error)

	SaveAcquisitions(ctx context.Context, records []domain.AcquisitionRecord) error
	GetAcquisitions(ctx context.Context, runID string) ([]domain.AcquisitionRecord, error)
}
