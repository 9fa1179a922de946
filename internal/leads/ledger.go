package leads

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/cache"
)

// Ledger is the SQLite-backed record of which leads have been exported.
// It is the Exporter collaborator the aggregator consults.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the export ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open ledger")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "leads: exec %s", pragma)
		}
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const ledgerMigration = `
CREATE TABLE IF NOT EXISTS exported_leads (
	email       TEXT PRIMARY KEY,
	batch_id    TEXT NOT NULL,
	exported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exported_leads_batch_id ON exported_leads(batch_id);
`

func (l *Ledger) migrate() error {
	_, err := l.db.Exec(ledgerMigration)
	return eris.Wrap(err, "leads: migrate ledger")
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// IsExported reports whether the email appears in the ledger.
func (l *Ledger) IsExported(ctx context.Context, email string) (bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM exported_leads WHERE email = ?`, cache.Key(email))

	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "leads: ledger lookup")
	}
	return true, nil
}

// MarkExported records the emails as exported under one batch ID.
// Already-present emails are left untouched.
func (l *Ledger) MarkExported(ctx context.Context, emails []string, batchID string) error {
	now := time.Now().UTC()
	for _, email := range emails {
		_, err := l.db.ExecContext(ctx, `
			INSERT INTO exported_leads (email, batch_id, exported_at) VALUES (?, ?, ?)
			ON CONFLICT (email) DO NOTHING`,
			cache.Key(email), batchID, now,
		)
		if err != nil {
			return eris.Wrapf(err, "leads: mark exported %s", email)
		}
	}
	return nil
}
