// Package db provides the snapshot archive of the roster.
//
// The data file remains the roster's only working store. The archive keeps
// dated copies of it in sqlite so earlier states of the roster can be listed
// and inspected. Each query is held in an sql file in the embedded `sql`
// directory which can also be run on the sqlite command line; the
// parameterization scheme in parameterize.go turns those files into sqlx
// named statements.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

//go:embed sql
var sqlEmbeddedFS embed.FS

// SQLFS is the embedded sql directory, mounted at its root.
var SQLFS fs.FS = mustSub(sqlEmbeddedFS, "sql")

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// parameterizedStmt describes an sql file parsed into an sqlx NamedStmt expecting the
// provided args.
type parameterizedStmt struct {
	sqlFile string
	args    []string
	*sqlx.NamedStmt
}

// verifyArgs checks args supplies exactly the parameters the sql file declares.
func (p *parameterizedStmt) verifyArgs(args map[string]any) error {
	if got, want := len(args), len(p.args); got != want {
		return fmt.Errorf(
			"argument length to named statement from %q incorrect: got %d want %d",
			p.sqlFile,
			got,
			want,
		)
	}
	for _, a := range p.args {
		if _, ok := args[a]; !ok {
			return fmt.Errorf("named statement from %q missing argument %q", p.sqlFile, a)
		}
	}
	return nil
}

// DB provides a wrapper around the sql.DB connection for archive operations.
type DB struct {
	*sqlx.DB
	sqlFS    fs.FS
	logLevel *slog.LevelVar
	log      *slog.Logger

	// Prepared statements.
	snapshotInsertStmt         *parameterizedStmt
	snapshotEmployeeInsertStmt *parameterizedStmt
	snapshotEmployeesStmt      *parameterizedStmt
}

// NewConnection opens the sqlite archive at dbPath, creates the schema if
// needed and prepares the archive statements. A nil logger logs to the
// default slog handler.
func NewConnection(dbPath string, logger *slog.Logger) (*DB, error) {

	// dataSource is the default setting for file-based databases.
	dataSource := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	// for in-memory test databases, check the necessary cached setting is used.
	if strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain '?cache=shared'", dbPath)
		}
		dataSource = dbPath
	}
	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer; one connection avoids lock contention
	// between the pool and open transactions.
	dbDB.SetMaxOpenConns(1)

	if err := dbDB.Ping(); err != nil {
		_ = dbDB.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)

	db := &DB{
		DB:       sqlx.NewDb(dbDB, "sqlite"),
		sqlFS:    SQLFS,
		logLevel: level,
		log:      slog.New(levelHandler{level, logger.Handler()}),
	}

	if err := db.InitSchema(db.sqlFS, "schema.sql"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.prepareNamedStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not prepare named statements: %w", err)
	}
	return db, nil
}

// SetLogLevel sets the minimum level of the archive's own log output.
func (db *DB) SetLogLevel(level slog.Level) {
	db.logLevel.Set(level)
}

// prepareNamedStatements prepares all the named statements for this database connection.
func (db *DB) prepareNamedStatements() error {
	var err error

	db.snapshotInsertStmt, err = db.prepNamedStatement(db.sqlFS, "snapshot_insert.sql")
	if err != nil {
		return fmt.Errorf("snapshot insert statement error: %w", err)
	}
	db.snapshotEmployeeInsertStmt, err = db.prepNamedStatement(db.sqlFS, "snapshot_employee_insert.sql")
	if err != nil {
		return fmt.Errorf("snapshot employee insert statement error: %w", err)
	}
	db.snapshotEmployeesStmt, err = db.prepNamedStatement(db.sqlFS, "snapshot_employees.sql")
	if err != nil {
		return fmt.Errorf("snapshot employees statement error: %w", err)
	}
	return nil
}

// prepNamedStatement prepares the query held in filePath.
func (db *DB) prepNamedStatement(fileFS fs.FS, filePath string) (*parameterizedStmt, error) {
	query, err := ParameterizeFile(fileFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("could not parameterize %q: %w", filePath, err)
	}

	pQuery, err := db.PrepareNamed(string(query.Body))
	if err != nil {
		return nil, fmt.Errorf("could not prepare statement %q: %w", filePath, err)
	}
	return &parameterizedStmt{
		filePath,
		query.Parameters,
		pQuery,
	}, nil
}

// InitSchema creates the necessary tables if they don't already exist. The schema file
// can be run idempotently.
func (db *DB) InitSchema(fileFS fs.FS, filePath string) error {

	schema, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return fmt.Errorf("could not read schema file at %q: %w", filePath, err)
	}

	_, err = db.ExecContext(context.Background(), string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// readSQL returns the unparameterized query held in filePath.
func readSQL(fileFS fs.FS, filePath string) (string, error) {
	b, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return "", fmt.Errorf("could not read sql file %q: %w", filePath, err)
	}
	return string(b), nil
}

// logQuery logs a statement and its arguments at debug level.
func (db *DB) logQuery(stmt *parameterizedStmt, args map[string]any, err error) {
	db.log.Debug("sql", "file", stmt.sqlFile, "args", args, "error", err)
}

// levelHandler filters records below a variable level before passing them on.
type levelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

func (h levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.handler.Enabled(ctx, l)
}

func (h levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{h.level, h.handler.WithAttrs(attrs)}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{h.level, h.handler.WithGroup(name)}
}
