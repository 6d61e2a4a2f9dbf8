package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alejandrodnm/stockbot/internal/domain"
)

// SaveReconciliation appends a reconciliation snapshot to the journal.
func (s *SQLiteStorage) SaveReconciliation(ctx context.Context, r domain.Reconciliation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (at, tickers, positions, value_owned, value_paid, balance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(r.At), strings.Join(r.Tickers, ","), r.Positions,
		r.ValueOwned, r.ValuePaid, r.Balance,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveReconciliation: %w", err)
	}
	return nil
}

// GetReconciliations returns the latest reconciliations, newest first.
// A limit <= 0 returns all of them.
func (s *SQLiteStorage) GetReconciliations(ctx context.Context, limit int) ([]domain.Reconciliation, error) {
	query := `
		SELECT id, at, tickers, positions, value_owned, value_paid, balance
		FROM reconciliations ORDER BY at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetReconciliations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reconciliation
	for rows.Next() {
		var r domain.Reconciliation
		var at, tickers string
		if err := rows.Scan(&r.ID, &at, &tickers, &r.Positions, &r.ValueOwned, &r.ValuePaid, &r.Balance); err != nil {
			return nil, fmt.Errorf("storage.GetReconciliations: scan: %w", err)
		}
		r.At = parseTime(at)
		if tickers != "" {
			r.Tickers = strings.Split(tickers, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveAcquisitions records every selected ticker of a run in one transaction.
func (s *SQLiteStorage) SaveAcquisitions(ctx context.Context, records []domain.AcquisitionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveAcquisitions: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO acquisitions (run_id, at, ticker, score, price, quantity, status, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveAcquisitions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, formatTime(r.At), r.Ticker, r.Score, r.Price,
			r.Quantity, string(r.Status), r.Reason,
		); err != nil {
			return fmt.Errorf("storage.SaveAcquisitions: insert %s: %w", r.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveAcquisitions: commit: %w", err)
	}
	return nil
}

// GetAcquisitions returns the records of one run, or of every run when runID
// is empty, oldest first.
func (s *SQLiteStorage) GetAcquisitions(ctx context.Context, runID string) ([]domain.AcquisitionRecord, error) {
	query := `
		SELECT run_id, at, ticker, score, price, quantity, status, reason
		FROM acquisitions`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAcquisitions: %w", err)
	}
	defer rows.Close()

	var out []domain.AcquisitionRecord
	for rows.Next() {
		var r domain.AcquisitionRecord
		var at, status string
		var reason sql.NullString
		if err := rows.Scan(&r.RunID, &at, &r.Ticker, &r.Score, &r.Price, &r.Quantity, &status, &reason); err != nil {
			return nil, fmt.Errorf("storage.GetAcquisitions: scan: %w", err)
		}
		r.At = parseTime(at)
		r.Status = domain.AcquisitionStatus(status)
		r.Reason = reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}
