// Package history records evaluations in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/stackcalc/calc"
	"github.com/chazu/stackcalc/pkg/bytecode"
	"github.com/chazu/stackcalc/pkg/wire"
)

// Entry is one recorded evaluation.
type Entry struct {
	ID           int64
	Source       string
	Value        int // meaningful only when ErrorKind is empty
	ErrorKind    calc.Kind
	ErrorMessage string
	Program      *bytecode.Program // nil when the front end failed
	CreatedAt    time.Time
}

// OK reports whether the evaluation succeeded.
func (e *Entry) OK() bool {
	return e.ErrorKind == calc.KindNone
}

// NewEntry builds an entry from the outcome of calc.Evaluate.
func NewEntry(source string, res *calc.Result, err error) Entry {
	e := Entry{Source: source, CreatedAt: time.Now()}
	if res != nil {
		e.Program = res.Program
		e.Value = res.Value
	}
	if err != nil {
		e.Value = 0
		e.ErrorKind = calc.ErrorKind(err)
		e.ErrorMessage = err.Error()
	}
	return e
}

// Store is an evaluation log.
type Store struct {
	db  *sql.DB
	log commonlog.Logger
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One connection keeps ":memory:" a single database and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating db schema: %w", err)
	}
	s := &Store{db: db, log: commonlog.GetLogger("stackcalc.history")}
	s.log.Debugf("opened %s", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e and returns its ID. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var value sql.NullInt64
	if e.OK() {
		value = sql.NullInt64{Int64: int64(e.Value), Valid: true}
	}

	var program []byte
	if e.Program != nil {
		var err error
		program, err = wire.MarshalProgram(e.Program)
		if err != nil {
			return 0, fmt.Errorf("encoding program: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO evaluations (source, value, error_kind, error_message, program, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		e.Source, value, string(e.ErrorKind), e.ErrorMessage, program, e.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("recording evaluation: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, value, error_kind, error_message, program, created_at FROM evaluations ORDER BY id DESC LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, source, value, error_kind, error_message, program, created_at FROM evaluations WHERE id = $1", id)
	e, err := s.scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("evaluation %d not found", id)
	}
	return e, err
}

// KindCounts returns the number of recorded evaluations per error kind. The
// empty kind counts successes.
func (s *Store) KindCounts(ctx context.Context) (map[calc.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT error_kind, COUNT(*) FROM evaluations GROUP BY error_kind")
	if err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}
	defer rows.Close()

	counts := make(map[calc.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[calc.Kind(kind)] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEntry(sc scanner) (Entry, error) {
	var (
		e         Entry
		value     sql.NullInt64
		kind      string
		program   []byte
		createdAt int64
	)
	if err := sc.Scan(&e.ID, &e.Source, &value, &kind, &e.ErrorMessage, &program, &createdAt); err != nil {
		return Entry{}, err
	}
	e.Value = int(value.Int64)
	e.ErrorKind = calc.Kind(kind)
	e.CreatedAt = time.Unix(0, createdAt)
	if len(program) > 0 {
		p, err := wire.UnmarshalProgram(program)
		if err != nil {
			// A bad blob should not hide the rest of the row.
			s.log.Warningf("evaluation %d: %s", e.ID, err)
		} else {
			e.Program = p
		}
	}
	return e, nil
}
