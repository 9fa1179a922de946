package cache

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// LocalStore implements Store over a per-installation SQLite database.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (or creates) the SQLite database at path and applies
// the schema.
func NewLocalStore(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	s := &LocalStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const localMigration = `
CREATE TABLE IF NOT EXISTS verification_cache (
	email      TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verification_cache_created_at ON verification_cache(created_at);
`

func (s *LocalStore) migrate() error {
	_, err := s.db.Exec(localMigration)
	return eris.Wrap(err, "cache: migrate sqlite")
}

// Close releases the underlying database handle.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Get(ctx context.Context, email string) (*model.VerificationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM verification_cache WHERE email = ?`, Key(email))

	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite get")
	}

	var rec model.VerificationRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "cache: unmarshal record")
	}
	return &rec, nil
}

func (s *LocalStore) Put(ctx context.Context, rec model.VerificationRecord) error {
	rec.Email = Key(rec.Email)
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "cache: marshal record")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verification_cache (email, record, created_at) VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			record = excluded.record,
			created_at = excluded.created_at`,
		rec.Email, string(recordJSON), rec.CreatedAt,
	)
	return eris.Wrap(err, "cache: sqlite put")
}

func (s *LocalStore) Delete(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_cache WHERE email = ?`, Key(email))
	if err != nil {
		return false, eris.Wrap(err, "cache: sqlite delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "cache: rows affected")
	}
	return n > 0, nil
}

func (s *LocalStore) DeleteAll(ctx context.Context, emails []string) (int, error) {
	count := 0
	for _, email := range emails {
		deleted, err := s.Delete(ctx, email)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

func (s *LocalStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verification_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: sqlite clear")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: rows affected")
}

func (s *LocalStore) ListAll(ctx context.Context) (map[string]model.VerificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, record FROM verification_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite list")
	}
	defer rows.Close()

	out := make(map[string]model.VerificationRecord)
	for rows.Next() {
		var email, recordJSON string
		if err := rows.Scan(&email, &recordJSON); err != nil {
			return nil, eris.Wrap(err, "cache: scan record")
		}
		var rec model.VerificationRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, eris.Wrap(err, "cache: unmarshal record")
		}
		out[email] = rec
	}
	return out, eris.Wrap(rows.Err(), "cache: sqlite list iterate")
}

func (s *LocalStore) Stats(ctx context.Context) (*model.CacheStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(created_at), 0), COALESCE(MIN(created_at), 0)
		FROM verification_cache`)

	var stats model.CacheStats
	if err := row.Scan(&stats.TotalEntries, &stats.NewestEntry, &stats.OldestEntry); err != nil {
		return nil, eris.Wrap(err, "cache: sqlite stats")
	}
	return &stats, nil
}

func (s *LocalStore) HealthCheck(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "cache: sqlite ping")
}
