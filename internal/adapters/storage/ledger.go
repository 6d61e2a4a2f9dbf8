package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

const nextIDKey = "next_position_id"

// LoadLedger reads positions, balance and the id sequence. Each part loads on
// its own: found reports whether a balance record exists, and positions are
// returned even when it does not.
func (s *SQLiteStorage) LoadLedger(ctx context.Context) (domain.LedgerState, bool, error) {
	var state domain.LedgerState

	positions, err := s.queryPositions(ctx)
	if err != nil {
		return state, false, err
	}
	state.Positions = positions

	found := true
	err = s.db.QueryRowContext(ctx, `SELECT amount FROM balance WHERE id = 1`).Scan(&state.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return state, false, fmt.Errorf("storage.LoadLedger: balance: %w: %w", domain.ErrPersistence, err)
	}

	var next sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT value FROM ledger_meta WHERE key = ?`, nextIDKey).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return state, false, fmt.Errorf("storage.LoadLedger: next id: %w: %w", domain.ErrPersistence, err)
	}
	state.NextID = next.Int64
	// Sin meta (DB antigua o borrada a mano): continuar después del mayor id.
	for _, p := range positions {
		if p.ID >= state.NextID {
			state.NextID = p.ID + 1
		}
	}

	return state, found, nil
}

// SaveLedger replaces the stored ledger in a single transaction. Nothing is
// visible to other readers until the commit succeeds.
func (s *SQLiteStorage) SaveLedger(ctx context.Context, state domain.LedgerState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveLedger: begin tx: %w: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("storage.SaveLedger: clear positions: %w: %w", domain.ErrPersistence, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
			(id, ticker, date_purchased, price_purchased,
			 date_last_refreshed, current_price, value_increase)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveLedger: prepare: %w: %w", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	for _, p := range state.Positions {
		if _, err := stmt.ExecContext(ctx,
			p.ID,
			p.Ticker,
			formatTime(p.DatePurchased),
			p.PricePurchased,
			formatTime(p.DateLastRefreshed),
			p.CurrentPrice,
			p.ValueIncrease,
		); err != nil {
			return fmt.Errorf("storage.SaveLedger: insert position %d: %w: %w", p.ID, domain.ErrPersistence, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO balance (id, amount) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET amount = excluded.amount`,
		state.Balance,
	); err != nil {
		return fmt.Errorf("storage.SaveLedger: balance: %w: %w", domain.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		nextIDKey, state.NextID,
	); err != nil {
		return fmt.Errorf("storage.SaveLedger: next id: %w: %w", domain.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveLedger: commit: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// queryPositions returns every stored row in ledger order.
func (s *SQLiteStorage) queryPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, date_purchased, price_purchased,
		       date_last_refreshed, current_price, value_increase
		FROM positions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadLedger: query positions: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var p domain.Position
		var purchased, refreshed string
		if err := rows.Scan(
			&p.ID, &p.Ticker, &purchased, &p.PricePurchased,
			&refreshed, &p.CurrentPrice, &p.ValueIncrease,
		); err != nil {
			return nil, fmt.Errorf("storage.LoadLedger: scan position: %w: %w", domain.ErrPersistence, err)
		}
		p.DatePurchased = parseTime(purchased)
		p.DateLastRefreshed = parseTime(refreshed)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.LoadLedger: rows: %w: %w", domain.ErrPersistence, err)
	}
	return out, nil
}
