package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/attrition/internal/domain/snapshot"
	"github.com/okian/attrition/pkg/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Default store configuration constants.
const (
	driverName          = "sqlite"
	memoryPath          = ":memory:"
	defaultMaxListLimit = 50
	defaultBusyTimeout  = 5 * time.Second
	defaultJobLevel     = 1
	dirPerm             = 0o755
	component           = "repository"
)

// DefaultDepartments are seeded into a fresh database.
var DefaultDepartments = []string{"Sales", "Research & Development", "Human Resources"}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string

	seedDepartments []string
	maxListLimit    int
	busyTimeout     time.Duration
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path, applies the
// schema and seeds departments. path may be ":memory:".
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:            path,
		seedDepartments: append([]string{}, DefaultDepartments...),
		maxListLimit:    defaultMaxListLimit,
		busyTimeout:     defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open store: empty database path")
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open(driverName, s.dsn())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == memoryPath {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	s.db = db

	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// dsn applies pragmas through the driver so every pooled connection gets them.
func (s *SQLiteStore) dsn() string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", s.busyTimeout.Milliseconds()),
		"_pragma=foreign_keys(1)",
	}
	if s.path != memoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return "file:" + s.path + "?" + strings.Join(pragmas, "&")
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) seed(ctx context.Context) error {
	for _, name := range s.seedDepartments {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO Departments (DepartmentName) VALUES (?)`, name); err != nil {
			return fmt.Errorf("seed department %q: %w", name, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadSnapshot reads all employees inside one transaction so concurrent
// writers cannot produce a half-updated view.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordErrorByComponent(component, "snapshot_begin")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, snapshotQuery)
	if err != nil {
		metrics.RecordErrorByComponent(component, "snapshot_query")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load snapshot columns: %w", err)
	}

	records := make([]snapshot.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			metrics.RecordErrorByComponent(component, "snapshot_scan")
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		rec := make(snapshot.Record, len(columns))
		for i, c := range columns {
			rec[c] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}

	snap, err := snapshot.New(columns, records, snapshot.WithTakenAt(start.UTC()))
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	metrics.RecordRepositorySnapshotLoad(msSince(start), snap.Len())
	return snap, nil
}

// normalize converts driver values into snapshot scalars.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return v
	}
}

// InsertRecord creates an employee in one transaction.
func (s *SQLiteStore) InsertRecord(ctx context.Context, e NewEmployee) (int64, error) {
	start := time.Now()
	if err := validateNewEmployee(e); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert employee: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var departmentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT DepartmentID FROM Departments WHERE DepartmentName = ?`, e.Department).Scan(&departmentID)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent(component, "department_not_found")
		return 0, fmt.Errorf("%w: %s", ErrDepartmentNotFound, e.Department)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup department: %w", err)
	}

	jobID, err := ensureJob(ctx, tx, e.JobRole)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, insertEmployeeQuery,
		departmentID, jobID, e.MonthlyIncome, e.OverTime,
		nullInt(e.Age), nullString(e.Gender), nullString(e.MaritalStatus), nullString(e.BusinessTravel),
		nullInt(e.DailyRate), nullInt(e.TotalWorkingYears), nullInt(e.JobSatisfaction),
		nullInt(e.EnvironmentSatisfaction), nullString(e.Attrition),
	)
	if err != nil {
		metrics.RecordErrorByComponent(component, "insert")
		return 0, fmt.Errorf("insert employee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert employee id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit employee: %w", err)
	}

	metrics.RecordRepositoryWrite("insert")
	metrics.RecordRepositoryUpdateLatency(msSince(start))
	return id, nil
}

// ensureJob returns the id of role, creating it at the default level.
func ensureJob(ctx context.Context, tx *sql.Tx, role string) (int64, error) {
	var jobID int64
	err := tx.QueryRowContext(ctx, `SELECT JobID FROM Jobs WHERE JobRole = ?`, role).Scan(&jobID)
	if err == nil {
		return jobID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup job: %w", err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO Jobs (JobRole, JobLevel) VALUES (?, ?)`, role, defaultJobLevel)
	if err != nil {
		return 0, fmt.Errorf("create job: %w", err)
	}
	jobID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create job id: %w", err)
	}
	return jobID, nil
}

func validateNewEmployee(e NewEmployee) error {
	switch {
	case strings.TrimSpace(e.Department) == "":
		return fmt.Errorf("%w: missing department", ErrInvalidEmployee)
	case strings.TrimSpace(e.JobRole) == "":
		return fmt.Errorf("%w: missing job role", ErrInvalidEmployee)
	case strings.TrimSpace(e.OverTime) == "":
		return fmt.Errorf("%w: missing overtime", ErrInvalidEmployee)
	case e.MonthlyIncome <= 0:
		return fmt.Errorf("%w: monthly income must be positive", ErrInvalidEmployee)
	}
	return nil
}

// UpdateField sets one column of one employee. The value must match the
// column kind; foreign keys must name an existing row.
func (s *SQLiteStore) UpdateField(ctx context.Context, id int64, field string, value any) error {
	start := time.Now()
	col, ok := updatableFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	v, err := col.value(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	defer func() { _ = tx.Rollback() }()

	if col.kind == kindReference && v != nil {
		if err := checkReference(ctx, tx, col, v); err != nil {
			metrics.RecordErrorByComponent(component, "unknown_reference")
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	// field comes from updatableFields, never from the caller verbatim.
	query := fmt.Sprintf(`UPDATE Employees SET %s = ? WHERE EmployeeID = ?`, field)
	res, err := tx.ExecContext(ctx, query, v, id)
	if err != nil {
		metrics.RecordErrorByComponent(component, "update")
		return fmt.Errorf("update %s: %w", field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	if n == 0 {
		metrics.RecordErrorByComponent(component, "not_found")
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s: commit: %w", field, err)
	}

	metrics.RecordRepositoryWrite("update")
	metrics.RecordRepositoryUpdateLatency(msSince(start))
	return nil
}

func checkReference(ctx context.Context, tx *sql.Tx, col column, id any) error {
	// refTable and refKey come from updatableFields.
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = ?`, col.refTable, col.refKey)
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", ErrUnknownReference, col.refTable, id)
	}
	return err
}

// value checks v against the column kind and returns what is stored.
func (c column) value(v any) (any, error) {
	if v == nil {
		if c.required {
			return nil, fmt.Errorf("%w: value is required", ErrInvalidValue)
		}
		return nil, nil
	}

	switch c.kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want text, got %T", ErrInvalidValue, v)
		}
		if c.required && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: value is required", ErrInvalidValue)
		}
		return s, nil
	case kindInteger, kindReference:
		i, ok := integerValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: want integer, got %v", ErrInvalidValue, v)
		}
		return i, nil
	case kindIncome:
		f, ok := numberValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: want number, got %v", ErrInvalidValue, v)
		}
		if f <= 0 {
			return nil, fmt.Errorf("%w: monthly income must be positive", ErrInvalidValue)
		}
		if f == math.Trunc(f) && f <= 1<<53 {
			return int64(f), nil
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: unsupported column", ErrInvalidValue)
}

// numberValue accepts Go numbers and json.Number. Strings and bools are not
// numbers, and neither are NaN or infinities.
func numberValue(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// integerValue accepts numbers with no fractional part.
func integerValue(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := numberValue(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// ListEmployees returns up to limit employees, capped at the store maximum.
func (s *SQLiteStore) ListEmployees(ctx context.Context, limit int) ([]EmployeeRow, error) {
	start := time.Now()
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if limit > s.maxListLimit {
		limit = s.maxListLimit
	}

	rows, err := s.db.QueryContext(ctx, listEmployeesQuery, limit)
	if err != nil {
		metrics.RecordErrorByComponent(component, "list")
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]EmployeeRow, 0, limit)
	for rows.Next() {
		var r EmployeeRow
		if err := rows.Scan(&r.ID, &r.Age, &r.Gender, &r.MaritalStatus, &r.Department,
			&r.JobRole, &r.MonthlyIncome, &r.OverTime, &r.Attrition); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	metrics.RecordRepositoryQueryLatency(msSince(start))
	return out, nil
}

// Departments returns all department names ordered by id.
func (s *SQLiteStore) Departments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DepartmentName FROM Departments ORDER BY DepartmentID`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Count returns the number of employees.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	metrics.UpdateRepositoryRecordsTotal(n)
	return n, nil
}

func nullString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
