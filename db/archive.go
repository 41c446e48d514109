package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rorycl/roster/roster"
)

// timeFormat is the layout of snapshots.taken_at.
const timeFormat = time.RFC3339

// ErrSnapshotNotFound reports a snapshot id not present in the archive.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the header of one archived copy of the roster.
type Snapshot struct {
	ID            int64  `db:"id"`
	TakenAtStr    string `db:"taken_at"`
	Source        string `db:"source"`
	EmployeeCount int    `db:"employee_count"`
	TakenAt       time.Time
}

// SaveSnapshot archives employees as a new snapshot taken at takenAt from the
// data file source, returning the snapshot id. The snapshot is written in a
// single transaction.
func (db *DB) SaveSnapshot(ctx context.Context, source string, takenAt time.Time, employees []roster.Employee) (int64, error) {

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("snapshot transaction error: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	args := map[string]any{
		"TakenAt":       takenAt.UTC().Format(timeFormat),
		"Source":        source,
		"EmployeeCount": len(employees),
	}
	if err := db.snapshotInsertStmt.verifyArgs(args); err != nil {
		return 0, err
	}
	result, err := tx.NamedStmtContext(ctx, db.snapshotInsertStmt.NamedStmt).ExecContext(ctx, args)
	db.logQuery(db.snapshotInsertStmt, args, err)
	if err != nil {
		return 0, fmt.Errorf("snapshot insert error: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id error: %w", err)
	}

	employeeStmt := tx.NamedStmtContext(ctx, db.snapshotEmployeeInsertStmt.NamedStmt)
	for i, e := range employees {
		args := map[string]any{
			"SnapshotID": id,
			"Ordinal":    i + 1,
			"Name":       e.Name,
			"Position":   e.Position,
			"Salary":     e.Salary,
		}
		if err := db.snapshotEmployeeInsertStmt.verifyArgs(args); err != nil {
			return 0, err
		}
		_, err := employeeStmt.ExecContext(ctx, args)
		db.logQuery(db.snapshotEmployeeInsertStmt, args, err)
		if err != nil {
			return 0, fmt.Errorf("snapshot employee %d insert error: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("snapshot commit error: %w", err)
	}
	db.log.Info("roster archived", "snapshot", id, "employees", len(employees), "source", source)
	return id, nil
}

// Snapshots lists the archived snapshots, most recent first.
func (db *DB) Snapshots(ctx context.Context) ([]Snapshot, error) {

	query, err := readSQL(db.sqlFS, "snapshots.sql")
	if err != nil {
		return nil, err
	}

	var snapshots []Snapshot
	if err := db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, fmt.Errorf("snapshots select error: %w", err)
	}
	for i := range snapshots {
		snapshots[i].TakenAt, err = time.Parse(timeFormat, snapshots[i].TakenAtStr)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d time error: %w", snapshots[i].ID, err)
		}
	}
	return snapshots, nil
}

// SnapshotEmployees returns the employees archived in snapshot id, in roster
// order.
func (db *DB) SnapshotEmployees(ctx context.Context, id int64) ([]roster.Employee, error) {

	var exists bool
	err := db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM snapshots WHERE id = ?)", id)
	if err != nil {
		return nil, fmt.Errorf("snapshot lookup error: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot %d: %w", id, ErrSnapshotNotFound)
	}

	args := map[string]any{"SnapshotID": id}
	if err := db.snapshotEmployeesStmt.verifyArgs(args); err != nil {
		return nil, err
	}
	employees := []roster.Employee{}
	err = db.snapshotEmployeesStmt.SelectContext(ctx, &employees, args)
	db.logQuery(db.snapshotEmployeesStmt, args, err)
	if err != nil {
		return nil, fmt.Errorf("snapshot employees select error: %w", err)
	}
	return employees, nil
}
