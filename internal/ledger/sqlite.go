package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	id          TEXT PRIMARY KEY,
	tenant_id   TEXT NOT NULL,
	provider_id TEXT NOT NULL,
	capability  TEXT NOT NULL,
	units       REAL NOT NULL,
	cost        REAL NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_tenant_created ON usage_records(tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_usage_provider_created ON usage_records(provider_id, created_at);
`

// DB is the durable store of record for billed requests.
type DB struct {
	db *sql.DB
}

// OpenDB opens (creating if needed) the usage database at path.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(context.Background(), pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("configuring ledger db: %w", err)
		}
	}

	if _, err := sqlDB.ExecContext(context.Background(), schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

func (d *DB) insert(rec Record) error {
	_, err := d.db.ExecContext(context.Background(),
		`INSERT INTO usage_records (id, tenant_id, provider_id, capability, units, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TenantID, rec.ProviderID, rec.Capability,
		rec.Units, rec.Cost, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

// RecentRecords returns the newest records for a tenant, most recent first.
func (d *DB) RecentRecords(tenantID string, limit int) ([]Record, error) {
	rows, err := d.db.QueryContext(context.Background(),
		`SELECT id, tenant_id, provider_id, capability, units, cost, created_at
		 FROM usage_records WHERE tenant_id = ?
		 ORDER BY created_at DESC LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var capability, createdAt string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.ProviderID, &capability,
			&rec.Units, &rec.Cost, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning usage record: %w", err)
		}
		rec.Capability = capability
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
