package engine

import (
	"context"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// LedgerService es la interfaz mínima que los engines necesitan del ledger.
// Desacopla reconciliación y adquisición de *ledger.Ledger concreto.
type LedgerService interface {
	Positions() []domain.Position
	Balance() float64
	Buy(ctx context.Context, ticker string, price float64, quantity int) (domain.Position, error)
	Refresh(ctx context.Context, prices map[string]float64) ([]domain.Position, error)
	StockSummary(ticker string) (domain.StockSummary, error)
}

// TruncateStr trunca un string a maxLen caracteres añadiendo "..." si es necesario.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
