package storage

// sqlite.go: persistencia del ledger simulado.
//
// Estrategia:
//   - `positions`: una fila por unidad comprada, clave = id de secuencia.
//   - `balance`: una sola fila con el cash disponible.
//   - `ledger_meta`: siguiente id a asignar; los ids nunca se reutilizan.
//   - Las tres se escriben en la misma transacción (SaveLedger), así nadie
//     observa posiciones nuevas con el balance viejo.
//   - `reconciliations` y `acquisitions` son el journal para reportes.
//     Prune automático al arrancar: reconciliaciones > 90d.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id                  INTEGER PRIMARY KEY,
    ticker              TEXT     NOT NULL,
    date_purchased      DATETIME NOT NULL,
    price_purchased     REAL     NOT NULL,
    date_last_refreshed DATETIME NOT NULL,
    current_price       REAL     NOT NULL,
    value_increase      REAL     NOT NULL DEFAULT 0
);

-- Cash simulado, siempre una fila (id = 1)
CREATE TABLE IF NOT EXISTS balance (
    id     INTEGER PRIMARY KEY CHECK (id = 1),
    amount REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_meta (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reconciliations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    at          DATETIME NOT NULL,
    tickers     TEXT     NOT NULL,
    positions   INTEGER  NOT NULL DEFAULT 0,
    value_owned REAL     NOT NULL DEFAULT 0,
    value_paid  REAL     NOT NULL DEFAULT 0,
    balance     REAL     NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS acquisitions (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   TEXT     NOT NULL,
    at       DATETIME NOT NULL,
    ticker   TEXT     NOT NULL,
    score    REAL     NOT NULL DEFAULT 0,
    price    REAL     NOT NULL DEFAULT 0,
    quantity INTEGER  NOT NULL DEFAULT 0,
    status   TEXT     NOT NULL,
    reason   TEXT
);

CREATE INDEX IF NOT EXISTS idx_positions_ticker ON positions(ticker);
CREATE INDEX IF NOT EXISTS idx_recon_at         ON reconciliations(at DESC);
CREATE INDEX IF NOT EXISTS idx_acq_run          ON acquisitions(run_id);
`

const retentionReconciliations = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.LedgerStorage y ports.Journal usando SQLite
// (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina entradas antiguas del journal para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionReconciliations).Format(time.RFC3339Nano)
	s.db.ExecContext(ctx, `DELETE FROM reconciliations WHERE at < ?`, cutoff)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
