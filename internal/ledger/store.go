package ledger

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/certen/ledger-core/internal/commitment"
	"github.com/certen/ledger-core/internal/ledgercore"
	"github.com/certen/ledger-core/internal/obslog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoRows mirrors sql.ErrNoRows for callers that want to detect "no
// entries for this container" without importing database/sql directly;
// Store.GetState never returns it, returning the genesis State instead,
// matching the original get_state fallback semantics.
var ErrNoRows = sql.ErrNoRows

// Store is the C5 ledger backed by Postgres under SERIALIZABLE isolation
// plus a row lock on the current tip, grounded on
// original_source/kernel/rust/ubl-server/src/db.rs and on the connection
// pooling / migration scaffolding of pkg/database/client.go.
type Store struct {
	db      *sql.DB
	logger  *obslog.Logger
	retries int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(l *obslog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRetries overrides the default serializable-conflict retry budget.
func WithRetries(n int) Option {
	return func(s *Store) { s.retries = n }
}

// Open opens a connection pool to databaseURL and verifies connectivity.
func Open(databaseURL string, opts ...Option) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("ledger: database URL cannot be empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: ping database: %w", err)
	}

	logger, _ := obslog.New(obslog.DefaultConfig())

	s := &Store{db: db, logger: logger, retries: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// MigrateUp applies any pending migrations, following the embedded-FS +
// schema_migrations pattern of pkg/database/client.go.
func (s *Store) MigrateUp(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("ledger: load migrations: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("ledger: query applied migrations: %w", err)
		}
		applied = map[string]bool{}
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("ledger: begin migration tx: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("ledger: apply migration %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("ledger: commit migration %s: %w", m.version, err)
		}
		s.logger.Info("applied migration", "version", m.version)
	}
	return nil
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	var out []migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return err
		}
		version := strings.TrimSuffix(d.Name(), ".sql")
		out = append(out, migration{version: version, sql: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func (s *Store) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// GetState returns the current tip of containerID, or the genesis State
// if the container has never received a successful append — matching
// spec.md §4.5's "returns current tip or genesis sentinel" contract
// rather than the original's get_state, which errors on a miss; the
// genesis fallback is what the orchestrator actually needs on every first
// commit to a container.
func (s *Store) GetState(ctx context.Context, containerID string) (State, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sequence, entry_hash, metadata
		FROM ledger_entry
		WHERE container_id = $1
		ORDER BY sequence DESC
		LIMIT 1
	`, containerID)

	var seq int64
	var entryHash string
	var metadataRaw []byte
	if err := row.Scan(&seq, &entryHash, &metadataRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Genesis(containerID), nil
		}
		return State{}, fmt.Errorf("ledger: get state: %w", err)
	}

	balance := runningBalanceFromMetadata(metadataRaw)

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM ledger_entry WHERE container_id = $1`, containerID).Scan(&count); err != nil {
		return State{}, fmt.Errorf("ledger: count entries: %w", err)
	}

	return State{
		ContainerID:     containerID,
		LastHash:        entryHash,
		NextSequence:    seq + 1,
		PhysicalBalance: balance,
		EntryCount:      count,
	}, nil
}

// entryMetadata is the opaque metadata payload this store writes on every
// insert. physics_delta and running_balance are not fields of the
// documented logical schema (spec.md §6 only names container_id,
// sequence, link_hash, previous_hash, entry_hash, ts_unix_ms, metadata) --
// they are carried inside the opaque metadata column so GetState can
// recover a container's running physical_balance across restarts without
// widening the schema spec.md fixes.
type entryMetadata struct {
	PhysicsDelta   string `json:"physics_delta"`
	RunningBalance string `json:"running_balance"`
}

func runningBalanceFromMetadata(raw []byte) *big.Int {
	var m entryMetadata
	if len(raw) == 0 {
		return big.NewInt(0)
	}
	if err := json.Unmarshal(raw, &m); err != nil || m.RunningBalance == "" {
		return big.NewInt(0)
	}
	balance, ok := new(big.Int).SetString(m.RunningBalance, 10)
	if !ok {
		return big.NewInt(0)
	}
	return balance
}

// Append runs the algorithm of spec.md §4.5: begin a SERIALIZABLE
// transaction, lock and read the container's current tip with
// SELECT ... FOR UPDATE, re-validate the proposed link's version/previous
// hash/sequence against what the lock actually observed (the TOCTOU
// defense — the pre-lock Membrane call in the orchestrator is only an
// optimization), compute entry_hash, insert, commit. On a serialization
// failure the whole operation retries up to the configured budget; once
// exhausted it surfaces as SequenceMismatch, per spec.md §4.5 step 7.
func (s *Store) Append(ctx context.Context, link *LinkCommit) (Entry, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		entry, err := s.appendOnce(ctx, link)
		if err == nil {
			return entry, nil
		}
		if isSerializationFailure(err) {
			lastErr = err
			continue
		}
		return Entry{}, err
	}
	if lastErr != nil {
		return Entry{}, fmt.Errorf("ledger: serializable retries exhausted: %w", ledgercore.ErrSequenceMismatch)
	}
	return Entry{}, fmt.Errorf("ledger: append failed with no error recorded")
}

func (s *Store) appendOnce(ctx context.Context, link *LinkCommit) (Entry, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return Entry{}, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT sequence, entry_hash, metadata
		FROM ledger_entry
		WHERE container_id = $1
		ORDER BY sequence DESC
		LIMIT 1
		FOR UPDATE
	`, link.ContainerID)

	var expectedPrev string
	var expectedSeq int64
	var seq int64
	var entryHash string
	var priorMetadata []byte
	var priorBalance *big.Int
	switch err := row.Scan(&seq, &entryHash, &priorMetadata); {
	case errors.Is(err, sql.ErrNoRows):
		expectedPrev, expectedSeq = SentinelPreviousHash, 1
		priorBalance = big.NewInt(0)
	case err != nil:
		return Entry{}, fmt.Errorf("ledger: select tip for update: %w", err)
	default:
		expectedPrev, expectedSeq = entryHash, seq+1
		priorBalance = runningBalanceFromMetadata(priorMetadata)
	}

	if link.Version != 1 {
		return Entry{}, fmt.Errorf("ledger: link version %d: %w", link.Version, ledgercore.ErrInvalidVersion)
	}
	if link.PreviousHash != expectedPrev {
		return Entry{}, fmt.Errorf("ledger: previous_hash %q != tip %q: %w", link.PreviousHash, expectedPrev, ledgercore.ErrRealityDrift)
	}
	if link.ExpectedSequence != expectedSeq {
		return Entry{}, fmt.Errorf("ledger: expected_sequence %d != tip %d: %w", link.ExpectedSequence, expectedSeq, ledgercore.ErrSequenceMismatch)
	}

	tsUnixMs := time.Now().UTC().UnixMilli()
	entryHashOut := commitment.EntryHash(link.ContainerID, expectedSeq, link.AtomHash, expectedPrev, tsUnixMs)

	delta := link.PhysicsDelta
	if delta == nil {
		delta = big.NewInt(0)
	}
	newBalance := new(big.Int).Add(priorBalance, delta)
	metadataJSON, err := json.Marshal(entryMetadata{
		PhysicsDelta:   delta.String(),
		RunningBalance: newBalance.String(),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("ledger: marshal metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entry (container_id, sequence, link_hash, previous_hash, entry_hash, ts_unix_ms, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, link.ContainerID, expectedSeq, link.AtomHash, expectedPrev, entryHashOut, tsUnixMs, metadataJSON)
	if err != nil {
		if isUniqueViolation(err) {
			return Entry{}, fmt.Errorf("ledger: (container_id, sequence) already taken: %w", ledgercore.ErrSequenceMismatch)
		}
		return Entry{}, fmt.Errorf("ledger: insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("ledger: commit: %w", err)
	}

	return Entry{
		ContainerID:  link.ContainerID,
		Sequence:     expectedSeq,
		LinkHash:     link.AtomHash,
		PreviousHash: expectedPrev,
		EntryHash:    entryHashOut,
		TsUnixMs:     tsUnixMs,
	}, nil
}

// isSerializationFailure reports whether err is a Postgres serialization
// failure (SQLSTATE 40001), the condition spec.md §4.5/§5 says bounds the
// retry loop. lib/pq surfaces this as *pq.Error with Code "40001".
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001"
	}
	return strings.Contains(err.Error(), "could not serialize access")
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). A genesis-time race between two concurrent
// first appends to the same container finds no tip row to lock with
// `FOR UPDATE` and only collides at the (container_id, sequence) unique
// constraint on insert; spec.md §6 maps that collision to SequenceMismatch
// the same as the locked, in-flight case.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
