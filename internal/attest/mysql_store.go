package attest

import (
	"context"
	"database/sql"
	"strings"
	"time"

	xerrors "truthchain/internal/errors"
	"truthchain/internal/verdict"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore archives attestation records in MySQL for deployments that want
// a queryable index next to the ledger.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore connects to MySQL and ensures the schema exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "mysql dsn cannot be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "open mysql connection")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "connect to mysql")
	}

	store := &MySQLStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) initSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS attestations (
        id VARCHAR(64) PRIMARY KEY,
        short_title VARCHAR(255) NOT NULL,
        excerpt VARCHAR(255) NOT NULL,
        verdict VARCHAR(8) NOT NULL,
        confidence INT NOT NULL,
        tx_hash VARCHAR(66) NOT NULL,
        signer VARCHAR(42) NOT NULL DEFAULT '',
        created_at BIGINT NOT NULL,
        INDEX idx_attestation_created (created_at)
)`
	if _, err := s.db.Exec(schema); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "initialize attestations table")
	}
	return nil
}

// Save archives a record.
func (s *MySQLStore) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return xerrors.New(xerrors.CodeInvalidArgument, "record cannot be nil")
	}
	if strings.TrimSpace(record.ID) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "record id cannot be empty")
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	const stmt = `INSERT INTO attestations
        (id, short_title, excerpt, verdict, confidence, tx_hash, signer, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.ShortTitle,
		record.FullTitleExcerpt,
		string(record.Verdict),
		record.Confidence,
		record.TransactionID,
		record.Signer,
		record.CreatedAt,
	)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "insert attestation record")
	}
	return nil
}

// ListLatest returns up to limit records, newest first.
func (s *MySQLStore) ListLatest(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `SELECT id, short_title, excerpt, verdict, confidence, tx_hash, signer, created_at
        FROM attestations ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "query attestation records")
	}
	defer rows.Close()

	var results []*Record
	for rows.Next() {
		record := &Record{}
		var label string
		if err := rows.Scan(
			&record.ID,
			&record.ShortTitle,
			&record.FullTitleExcerpt,
			&label,
			&record.Confidence,
			&record.TransactionID,
			&record.Signer,
			&record.CreatedAt,
		); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "scan attestation record")
		}
		record.Verdict = verdict.Label(label)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "iterate attestation records")
	}
	return results, nil
}

// Count returns the number of archived records.
func (s *MySQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attestations`).Scan(&count); err != nil {
		return 0, xerrors.Wrap(xerrors.CodeStorageFailure, err, "count attestation records")
	}
	return count, nil
}

// Close releases the database handle.
func (s *MySQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*MySQLStore)(nil)
