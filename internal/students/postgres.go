package students

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps students in Postgres, for deployments where the API
// runs on more than one node.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS students (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INT NOT NULL,
	phone      TEXT,
	email      TEXT,
	grades     JSONB NOT NULL,
	finished   INT NOT NULL,
	total      DOUBLE PRECISION NOT NULL,
	gpa        DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS chat_history (
	student_id UUID PRIMARY KEY REFERENCES students(id) ON DELETE CASCADE,
	messages   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ConnectPostgres creates a pgx pool against databaseURL and ensures the
// schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("student postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &PostgresStore{pool: pool}, nil
}

func (st *PostgresStore) Close() error {
	st.pool.Close()
	return nil
}

func (st *PostgresStore) Create(ctx context.Context, s *Student) error {
	grades, err := json.Marshal(s.Grades)
	if err != nil {
		return fmt.Errorf("students: marshal grades: %w", err)
	}
	_, err = st.pool.Exec(ctx,
		`INSERT INTO students (id, name, age, phone, email, grades, finished, total, gpa)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.Age, s.Phone, s.Email, grades, s.Finished, s.Total, s.GPA,
	)
	if err != nil {
		return fmt.Errorf("students: insert: %w", err)
	}
	return nil
}

const pgStudentCols = `id, name, age, COALESCE(phone,''), COALESCE(email,''), grades, finished, total, gpa`

func scanPGStudent(row pgx.Row) (*Student, error) {
	var s Student
	var grades []byte
	if err := row.Scan(&s.ID, &s.Name, &s.Age, &s.Phone, &s.Email, &grades, &s.Finished, &s.Total, &s.GPA); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(grades, &s.Grades); err != nil {
		return nil, fmt.Errorf("students: unmarshal grades: %w", err)
	}
	return &s, nil
}

func (st *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	row := st.pool.QueryRow(ctx,
		`SELECT `+pgStudentCols+` FROM students WHERE id = $1`, id)
	s, err := scanPGStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (st *PostgresStore) List(ctx context.Context) ([]*Student, error) {
	return st.queryStudents(ctx,
		`SELECT `+pgStudentCols+` FROM students ORDER BY created_at, id`)
}

func (st *PostgresStore) ListByGPA(ctx context.Context, minGPA, maxGPA float64) ([]*Student, error) {
	return st.queryStudents(ctx,
		`SELECT `+pgStudentCols+` FROM students WHERE gpa >= $1 AND gpa <= $2 ORDER BY gpa DESC, id`,
		minGPA, maxGPA)
}

func (st *PostgresStore) queryStudents(ctx context.Context, query string, args ...any) ([]*Student, error) {
	rows, err := st.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("students: query: %w", err)
	}
	defer rows.Close()

	out := []*Student{}
	for rows.Next() {
		s, err := scanPGStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (st *PostgresStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := st.pool.Query(ctx, `SELECT id FROM students ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("students: query ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (st *PostgresStore) Update(ctx context.Context, s *Student) error {
	grades, err := json.Marshal(s.Grades)
	if err != nil {
		return fmt.Errorf("students: marshal grades: %w", err)
	}
	tag, err := st.pool.Exec(ctx,
		`UPDATE students SET name=$2, age=$3, phone=$4, email=$5, grades=$6, finished=$7, total=$8, gpa=$9, updated_at=now()
		 WHERE id = $1`,
		s.ID, s.Name, s.Age, s.Phone, s.Email, grades, s.Finished, s.Total, s.GPA,
	)
	if err != nil {
		return fmt.Errorf("students: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := st.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("students: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PostgresStore) History(ctx context.Context, id uuid.UUID) ([]ChatMessage, error) {
	var raw []byte
	err := st.pool.QueryRow(ctx,
		`SELECT messages FROM chat_history WHERE student_id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("students: history: %w", err)
	}
	var msgs []ChatMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("students: unmarshal history: %w", err)
	}
	return msgs, nil
}

func (st *PostgresStore) PutHistory(ctx context.Context, id uuid.UUID, msgs []ChatMessage) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("students: marshal history: %w", err)
	}
	_, err = st.pool.Exec(ctx,
		`INSERT INTO chat_history (student_id, messages, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (student_id) DO UPDATE SET messages = EXCLUDED.messages, updated_at = now()`,
		id, raw,
	)
	if err != nil {
		return fmt.Errorf("students: put history: %w", err)
	}
	return nil
}

func (st *PostgresStore) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	_, err := st.pool.Exec(ctx, `DELETE FROM chat_history WHERE student_id = $1`, id)
	if err != nil {
		return fmt.Errorf("students: delete history: %w", err)
	}
	return nil
}
