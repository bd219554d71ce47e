// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The students table is used as a document collection: one row per
// student, keyed by an opaque UUID. Uniqueness of roll_number and email
// and the value ranges are enforced by the schema itself, so the checks
// hold under concurrent writers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// driverName is the sqlite3 driver registered with our own SQL functions.
const driverName = "sqlite3_students"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// contains_fold(haystack, needle) is a Unicode-aware
			// case-insensitive substring test. SQLite's own LIKE only
			// folds ASCII and treats % and _ as wildcards.
			return conn.RegisterFunc("contains_fold", containsFold, true)
		},
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(cases.Fold().String(haystack), cases.Fold().String(needle))
}

// columns maps query fields to table columns. Anything not listed here
// never reaches the SQL text.
var columns = map[storage.Field]string{
	storage.FieldName:       "name",
	storage.FieldDepartment: "department",
	storage.FieldGPA:        "gpa",
	storage.FieldCreatedAt:  "created_at",
}

// uniqueFields maps a UNIQUE column back to its form field name.
var uniqueFields = map[string]string{
	"students.roll_number": "rollNumber",
	"students.email":       "email",
}

const selectColumns = "id, name, roll_number, email, department, gpa, created_at"

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB

	// now stamps created_at; replaced in tests.
	now func() time.Time
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if needed and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open(driverName, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows a single writer. One connection serialises writes
	// inside the pool instead of surfacing SQLITE_BUSY, and keeps
	// ":memory:" databases on the same connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id          TEXT    PRIMARY KEY,
			name        TEXT    NOT NULL CHECK (length(name) > 0),
			roll_number INTEGER NOT NULL UNIQUE CHECK (roll_number >= 1),
			email       TEXT    NOT NULL UNIQUE,
			department  TEXT    NOT NULL CHECK (length(department) > 0),
			gpa         REAL    NOT NULL CHECK (gpa >= 0 AND gpa <= 4),
			created_at  INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	student.ID = uuid.NewString()
	student.CreatedAt = s.now().UTC()

	_, err := s.Db.ExecContext(ctx,
		"INSERT INTO students (id, name, roll_number, email, department, gpa, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		student.ID, student.Name, student.RollNumber, student.Email,
		student.Department, student.GPA, student.CreatedAt.UnixNano(),
	)
	if err != nil {
		return types.Student{}, classify("CreateStudent", err)
	}

	return student, nil
}

func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM students WHERE id = ? LIMIT 1", id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

func (s *SQLite) GetStudents(ctx context.Context, q storage.Query) ([]types.Student, error) {
	where, args, err := buildWhere(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	orderBy, err := buildOrderBy(q.Order)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM students"+where+orderBy, args...)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error) {
	res, err := s.Db.ExecContext(ctx,
		"UPDATE students SET name = ?, roll_number = ?, email = ?, department = ?, gpa = ? WHERE id = ?",
		student.Name, student.RollNumber, student.Email, student.Department, student.GPA, id,
	)
	if err != nil {
		return types.Student{}, classify("UpdateStudentByID", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, storage.ErrNotFound
	}

	// Re-fetch so the caller sees exactly what is stored.
	return s.GetStudentByID(ctx, id)
}

func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	res, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteAll empties the collection. Used by the seeder.
func (s *SQLite) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.Db.ExecContext(ctx, "DELETE FROM students")
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: exec: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(sc scanner) (types.Student, error) {
	var (
		student   types.Student
		createdAt int64
	)
	err := sc.Scan(
		&student.ID,
		&student.Name,
		&student.RollNumber,
		&student.Email,
		&student.Department,
		&student.GPA,
		&createdAt,
	)
	if err != nil {
		return types.Student{}, err
	}
	student.CreatedAt = time.Unix(0, createdAt).UTC()
	return student, nil
}

func buildWhere(f storage.Filter) (string, []any, error) {
	if len(f.AnyOf) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(f.AnyOf))
	args := make([]any, 0, len(f.AnyOf))
	for _, c := range f.AnyOf {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", c.Field)
		}
		clauses = append(clauses, "contains_fold("+col+", ?)")
		args = append(args, c.Term)
	}

	return " WHERE " + strings.Join(clauses, " OR "), args, nil
}

func buildOrderBy(order []storage.Order) (string, error) {
	terms := make([]string, 0, len(order)+1)
	for _, o := range order {
		col, ok := columns[o.Field]
		if !ok {
			return "", fmt.Errorf("unknown sort field %q", o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, col+" "+dir)
	}

	// Insertion order breaks ties so equal keys come back in a stable
	// order, and records stamped in the same instant still list
	// newest-first under the default sort.
	tie := "rowid ASC"
	if len(order) > 0 && order[len(order)-1].Desc {
		tie = "rowid DESC"
	}
	terms = append(terms, tie)

	return " ORDER BY " + strings.Join(terms, ", "), nil
}

// classify turns a driver error from a write into a ConflictError when a
// UNIQUE constraint fired, and wraps it as a plain store error otherwise.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		// Message format: "UNIQUE constraint failed: students.email"
		msg := sqliteErr.Error()
		if i := strings.LastIndex(msg, ": "); i >= 0 {
			cols := strings.Split(msg[i+2:], ", ")
			if field, ok := uniqueFields[cols[0]]; ok {
				return &storage.ConflictError{Field: field}
			}
		}
	}
	return fmt.Errorf("%s: exec: %w", op, err)
}
