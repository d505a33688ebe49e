package students

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps students in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the student database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("students: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("students: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("students: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS students (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		age        INTEGER NOT NULL,
		phone      TEXT,
		email      TEXT,
		grades     TEXT NOT NULL,
		finished   INTEGER NOT NULL,
		total      REAL NOT NULL,
		gpa        REAL NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chat_history (
		student_id TEXT PRIMARY KEY,
		messages   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

func (st *SQLiteStore) Close() error { return st.db.Close() }

func (st *SQLiteStore) Create(ctx context.Context, s *Student) error {
	grades, err := json.Marshal(s.Grades)
	if err != nil {
		return fmt.Errorf("students: marshal grades: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO students (id, name, age, phone, email, grades, finished, total, gpa, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Name, s.Age, s.Phone, s.Email, string(grades),
		s.Finished, s.Total, s.GPA, now, now,
	)
	if err != nil {
		return fmt.Errorf("students: insert: %w", err)
	}
	return nil
}

const sqliteStudentCols = `id, name, age, phone, email, grades, finished, total, gpa`

func scanSQLiteStudent(row interface{ Scan(...any) error }) (*Student, error) {
	var s Student
	var id, grades string
	var phone, email sql.NullString
	if err := row.Scan(&id, &s.Name, &s.Age, &phone, &email, &grades, &s.Finished, &s.Total, &s.GPA); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("students: bad id %q: %w", id, err)
	}
	s.ID = parsed
	s.Phone = phone.String
	s.Email = email.String
	if err := json.Unmarshal([]byte(grades), &s.Grades); err != nil {
		return nil, fmt.Errorf("students: unmarshal grades: %w", err)
	}
	return &s, nil
}

func (st *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	row := st.db.QueryRowContext(ctx,
		`SELECT `+sqliteStudentCols+` FROM students WHERE id = ?`, id.String())
	s, err := scanSQLiteStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (st *SQLiteStore) List(ctx context.Context) ([]*Student, error) {
	return st.queryStudents(ctx,
		`SELECT `+sqliteStudentCols+` FROM students ORDER BY created_at, id`)
}

func (st *SQLiteStore) ListByGPA(ctx context.Context, minGPA, maxGPA float64) ([]*Student, error) {
	return st.queryStudents(ctx,
		`SELECT `+sqliteStudentCols+` FROM students WHERE gpa >= ? AND gpa <= ? ORDER BY gpa DESC, id`,
		minGPA, maxGPA)
}

func (st *SQLiteStore) queryStudents(ctx context.Context, query string, args ...any) ([]*Student, error) {
	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("students: query: %w", err)
	}
	defer rows.Close()

	out := []*Student{}
	for rows.Next() {
		s, err := scanSQLiteStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (st *SQLiteStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT id FROM students ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("students: query ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (st *SQLiteStore) Update(ctx context.Context, s *Student) error {
	grades, err := json.Marshal(s.Grades)
	if err != nil {
		return fmt.Errorf("students: marshal grades: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := st.db.ExecContext(ctx,
		`UPDATE students SET name=?, age=?, phone=?, email=?, grades=?, finished=?, total=?, gpa=?, updated_at=?
		 WHERE id = ?`,
		s.Name, s.Age, s.Phone, s.Email, string(grades), s.Finished, s.Total, s.GPA, now, s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("students: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("students: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, _ = st.db.ExecContext(ctx, `DELETE FROM chat_history WHERE student_id = ?`, id.String())
	return nil
}

func (st *SQLiteStore) History(ctx context.Context, id uuid.UUID) ([]ChatMessage, error) {
	var raw string
	err := st.db.QueryRowContext(ctx,
		`SELECT messages FROM chat_history WHERE student_id = ?`, id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("students: history: %w", err)
	}
	var msgs []ChatMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("students: unmarshal history: %w", err)
	}
	return msgs, nil
}

func (st *SQLiteStore) PutHistory(ctx context.Context, id uuid.UUID, msgs []ChatMessage) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("students: marshal history: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO chat_history (student_id, messages, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(student_id) DO UPDATE SET messages = excluded.messages, updated_at = excluded.updated_at`,
		id.String(), string(raw), now,
	)
	if err != nil {
		return fmt.Errorf("students: put history: %w", err)
	}
	return nil
}

func (st *SQLiteStore) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM chat_history WHERE student_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("students: delete history: %w", err)
	}
	return nil
}
