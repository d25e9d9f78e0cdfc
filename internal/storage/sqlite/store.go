// Package sqlite implements the ledger store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// timestampLayout is fixed width so TEXT ordering matches time ordering.
const timestampLayout = "2006-01-02 15:04:05.000000000"

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// capabilities caches optional schema features for the lifetime of a store.
type capabilities struct {
	mu             sync.Mutex
	detected       bool
	commissionRate bool
}

// Store implements interfaces.LedgerStore. Reads go through a pooled
// handle; writes go through a single-connection handle whose transactions
// begin IMMEDIATE so they never fail upgrading a read lock.
type Store struct {
	rdb    *sql.DB
	wdb    *sql.DB
	read   queryer
	write  queryer
	inTx   bool
	logger *common.Logger
	config common.LedgerConfig
	caps   *capabilities
	now    func() time.Time
}

// NewStore opens (creating if needed) the ledger database at config.Path.
// Migrate must be called before use.
func NewStore(logger *common.Logger, config common.LedgerConfig) (*Store, error) {
	if dir := filepath.Dir(config.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	busy := config.GetBusyTimeout().Milliseconds()
	base := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d", config.Path, busy)

	rdb, err := sql.Open("sqlite3", base)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	wdb, err := sql.Open("sqlite3", base+"&_txlock=immediate")
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to open ledger for writing: %w", err)
	}
	wdb.SetMaxOpenConns(1)

	if err := wdb.Ping(); err != nil {
		rdb.Close()
		wdb.Close()
		return nil, fmt.Errorf("failed to connect to ledger %s: %w", config.Path, err)
	}

	logger.Info().Str("path", config.Path).Msg("SQLite ledger opened")

	return &Store{
		rdb:    rdb,
		wdb:    wdb,
		read:   rdb,
		write:  wdb,
		logger: logger,
		config: config,
		caps:   &capabilities{},
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// bound returns a copy of s whose reads and writes both go through tx.
func (s *Store) bound(tx *sql.Tx) *Store {
	c := *s
	c.read = tx
	c.write = tx
	c.inTx = true
	return &c
}

// ReadSnapshot runs fn inside one read transaction.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(interfaces.LedgerReader) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.rdb.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read snapshot: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.bound(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// WriteTx runs fn inside one write transaction.
func (s *Store) WriteTx(ctx context.Context, fn func(interfaces.LedgerWriter) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.wdb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.bound(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	werr := s.wdb.Close()
	if err := s.rdb.Close(); err != nil {
		return err
	}
	return werr
}

func (s *Store) timestamp() string {
	return s.now().Format(timestampLayout)
}

// sqlTime scans the fixed-width created_at TEXT.
type sqlTime struct{ t *time.Time }

func (st sqlTime) Scan(src any) error {
	var str string
	switch v := src.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	case time.Time:
		*st.t = v.UTC()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	t, err := time.ParseInLocation(timestampLayout, str, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", str, err)
	}
	*st.t = t
	return nil
}

// sqlInt64 scans a nullable integer into a pointer.
type sqlInt64 struct{ p **int64 }

func (si sqlInt64) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		return err
	}
	if n.Valid {
		v := n.Int64
		*si.p = &v
	} else {
		*si.p = nil
	}
	return nil
}

// classify maps SQLite constraint failures onto the common error classes.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %v: %w", what, err, common.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: referenced record does not exist: %w", what, common.ErrNotFound)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%s: %v: %w", what, err, common.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func rowsAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return common.NotFoundf("%s %d", what, id)
	}
	return nil
}

// Compile-time check
var _ interfaces.LedgerStore = (*Store)(nil)
