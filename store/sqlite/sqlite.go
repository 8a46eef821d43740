/*
Package sqlite provides the SQLite-backed implementation of the member store.

PURPOSE:
  Persists the waitlist member table. One table, keyed by CID, mirroring the
  schema the deployed database has always used:

    members(cid TEXT PK, list_join_date TEXT,
            pilot_hours REAL NULL, atc_hours REAL NULL,
            check_start_date TEXT NULL)

  check_start_date is stored as YYYY-MM-DD and is always the first day of a
  month; list_join_date is kept verbatim as the feed wrote it.

NULLABILITY:
  pilot_hours/atc_hours and check_start_date are nullable on purpose: null
  means "not yet computed", which every policy check treats as "not
  evaluable". The store round-trips nulls as nil pointers, never as zeroes.

TRANSACTIONS:
  WithTx wraps one logical stage (a full reconciliation diff, or all the
  window advances of one activity pass) in a single database transaction,
  so a mid-stage failure rolls back cleanly.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block, one
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New(cfg.DBPath)
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - roster/store.go: Interface definitions
  - roster/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/waitlist-engine/roster"
)

// Store implements roster.TxMemberStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		cid TEXT PRIMARY KEY,
		list_join_date TEXT NOT NULL,
		pilot_hours REAL,
		atc_hours REAL,
		check_start_date TEXT
	);

	-- Hot path of the activity pass: "which members are Due today?"
	CREATE INDEX IF NOT EXISTS idx_members_check_start
		ON members(check_start_date) WHERE check_start_date IS NOT NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

const memberColumns = "cid, list_join_date, pilot_hours, atc_hours, check_start_date"

// =============================================================================
// READS
// =============================================================================

func (s *Store) Member(ctx context.Context, cid roster.CID) (roster.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE cid = ?", string(cid))
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return roster.Member{}, roster.ErrMemberNotFound
	}
	return m, err
}

func (s *Store) Members(ctx context.Context) ([]roster.Member, error) {
	return s.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members ORDER BY cid")
}

func (s *Store) CIDs(ctx context.Context) ([]roster.CID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT cid FROM members ORDER BY cid")
	if err != nil {
		return nil, fmt.Errorf("failed to query cids: %w", err)
	}
	defer rows.Close()

	var cids []roster.CID
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		cids = append(cids, roster.NormalizeCID(cid))
	}
	return cids, rows.Err()
}

func (s *Store) MembersWithUnknownHours(ctx context.Context) ([]roster.Member, error) {
	return s.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members WHERE pilot_hours IS NULL OR atc_hours IS NULL ORDER BY cid")
}

func (s *Store) MembersWithoutCheckStart(ctx context.Context) ([]roster.Member, error) {
	return s.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members WHERE check_start_date IS NULL ORDER BY cid")
}

func (s *Store) MembersDue(ctx context.Context, target time.Time) ([]roster.Member, error) {
	return s.queryMembers(ctx,
		"SELECT "+memberColumns+" FROM members WHERE check_start_date = ? ORDER BY cid",
		target.Format(roster.DateLayout))
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) Create(ctx context.Context, m roster.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return create(ctx, s.db, m)
}

func (s *Store) Delete(ctx context.Context, cid roster.CID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE cid = ?", string(cid))
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

func (s *Store) SetHours(ctx context.Context, cid roster.CID, pilot, atc decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exec1(ctx, s.db,
		"UPDATE members SET pilot_hours = ?, atc_hours = ? WHERE cid = ?",
		hoursValue(pilot), hoursValue(atc), string(cid))
}

func (s *Store) SetCheckStart(ctx context.Context, cid roster.CID, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exec1(ctx, s.db,
		"UPDATE members SET check_start_date = ? WHERE cid = ?",
		start.Format(roster.DateLayout), string(cid))
}

func (s *Store) AdvanceWindow(ctx context.Context, cid roster.CID, pilot, atc decimal.Decimal, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exec1(ctx, s.db,
		"UPDATE members SET pilot_hours = ?, atc_hours = ?, check_start_date = ? WHERE cid = ?",
		hoursValue(pilot), hoursValue(atc), start.Format(roster.DateLayout), string(cid))
}

// =============================================================================
// TRANSACTIONS (roster.TxMemberStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(roster.MemberStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes everything through the open transaction, so reads inside
// WithTx observe the transaction's own uncommitted writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Member(ctx context.Context, cid roster.CID) (roster.Member, error) {
	row := ts.tx.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE cid = ?", string(cid))
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return roster.Member{}, roster.ErrMemberNotFound
	}
	return m, err
}

func (ts *txStore) Members(ctx context.Context) ([]roster.Member, error) {
	return queryMembers(ctx, ts.tx, "SELECT "+memberColumns+" FROM members ORDER BY cid")
}

func (ts *txStore) CIDs(ctx context.Context) ([]roster.CID, error) {
	rows, err := ts.tx.QueryContext(ctx, "SELECT cid FROM members ORDER BY cid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cids []roster.CID
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		cids = append(cids, roster.NormalizeCID(cid))
	}
	return cids, rows.Err()
}

func (ts *txStore) MembersWithUnknownHours(ctx context.Context) ([]roster.Member, error) {
	return queryMembers(ctx, ts.tx,
		"SELECT "+memberColumns+" FROM members WHERE pilot_hours IS NULL OR atc_hours IS NULL ORDER BY cid")
}

func (ts *txStore) MembersWithoutCheckStart(ctx context.Context) ([]roster.Member, error) {
	return queryMembers(ctx, ts.tx,
		"SELECT "+memberColumns+" FROM members WHERE check_start_date IS NULL ORDER BY cid")
}

func (ts *txStore) MembersDue(ctx context.Context, target time.Time) ([]roster.Member, error) {
	return queryMembers(ctx, ts.tx,
		"SELECT "+memberColumns+" FROM members WHERE check_start_date = ? ORDER BY cid",
		target.Format(roster.DateLayout))
}

func (ts *txStore) Create(ctx context.Context, m roster.Member) error {
	return create(ctx, ts.tx, m)
}

func (ts *txStore) Delete(ctx context.Context, cid roster.CID) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM members WHERE cid = ?", string(cid))
	return err
}

func (ts *txStore) SetHours(ctx context.Context, cid roster.CID, pilot, atc decimal.Decimal) error {
	return exec1(ctx, ts.tx,
		"UPDATE members SET pilot_hours = ?, atc_hours = ? WHERE cid = ?",
		hoursValue(pilot), hoursValue(atc), string(cid))
}

func (ts *txStore) SetCheckStart(ctx context.Context, cid roster.CID, start time.Time) error {
	return exec1(ctx, ts.tx,
		"UPDATE members SET check_start_date = ? WHERE cid = ?",
		start.Format(roster.DateLayout), string(cid))
}

func (ts *txStore) AdvanceWindow(ctx context.Context, cid roster.CID, pilot, atc decimal.Decimal, start time.Time) error {
	return exec1(ctx, ts.tx,
		"UPDATE members SET pilot_hours = ?, atc_hours = ?, check_start_date = ? WHERE cid = ?",
		hoursValue(pilot), hoursValue(atc), start.Format(roster.DateLayout), string(cid))
}

// =============================================================================
// HELPERS
// =============================================================================

// querier is the subset of *sql.DB / *sql.Tx the helpers need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) queryMembers(ctx context.Context, query string, args ...any) ([]roster.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryMembers(ctx, s.db, query, args...)
}

func queryMembers(ctx context.Context, q querier, query string, args ...any) ([]roster.Member, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []roster.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func create(ctx context.Context, q querier, m roster.Member) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO members (cid, list_join_date, pilot_hours, atc_hours, check_start_date)
		VALUES (?, ?, ?, ?, ?)`,
		string(m.CID),
		m.ListJoinDate,
		nullableHours(m.PilotHours),
		nullableHours(m.ATCHours),
		nullableDate(m.CheckStart),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return roster.ErrDuplicateMember
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func exec1(ctx context.Context, q querier, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return roster.ErrMemberNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMember(row scannable) (roster.Member, error) {
	var (
		m          roster.Member
		cid        string
		pilot, atc sql.NullFloat64
		checkStart sql.NullString
	)

	err := row.Scan(&cid, &m.ListJoinDate, &pilot, &atc, &checkStart)
	if err != nil {
		return m, err
	}

	m.CID = roster.NormalizeCID(cid)
	if pilot.Valid {
		d := decimal.NewFromFloat(pilot.Float64)
		m.PilotHours = &d
	}
	if atc.Valid {
		d := decimal.NewFromFloat(atc.Float64)
		m.ATCHours = &d
	}
	if checkStart.Valid {
		t, err := time.Parse(roster.DateLayout, checkStart.String)
		if err != nil {
			return m, fmt.Errorf("failed to parse check_start_date %q for %s: %w", checkStart.String, cid, err)
		}
		m.CheckStart = &t
	}
	return m, nil
}

// hoursValue stores decimals through the REAL column. Exact decimal
// arithmetic happens before this boundary; two decimal places of hours are
// well inside float64 precision.
func hoursValue(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func nullableHours(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return hoursValue(*d)
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(roster.DateLayout)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
