package students

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrNotFound is returned by store lookups for unknown student IDs.
var ErrNotFound = errors.New("student not found")

// Chat roles, OpenAI-style.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a student's tutoring conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store persists students and their tutoring conversations. Two
// implementations exist: SQLite for single-node setups and Postgres when
// DATABASE_URL is configured.
type Store interface {
	Create(ctx context.Context, s *Student) error
	Get(ctx context.Context, id uuid.UUID) (*Student, error)
	List(ctx context.Context) ([]*Student, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	ListByGPA(ctx context.Context, minGPA, maxGPA float64) ([]*Student, error)
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id uuid.UUID) error

	History(ctx context.Context, id uuid.UUID) ([]ChatMessage, error)
	PutHistory(ctx context.Context, id uuid.UUID, msgs []ChatMessage) error
	DeleteHistory(ctx context.Context, id uuid.UUID) error

	Close() error
}

// Seed loads the demo roster into an empty store. A store that already
// holds students is left untouched.
func Seed(ctx context.Context, st Store) error {
	existing, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	roster := demoRoster()
	for _, s := range roster {
		if err := st.Create(ctx, s); err != nil {
			return err
		}
	}
	slog.Info("seeded demo students", slog.Int("count", len(roster)))
	return nil
}

func demoRoster() []*Student {
	type row struct {
		name  string
		age   int
		phone string
		email string
		e     Enrollment
	}
	rows := []row{
		{"Ahmad Gaffar", 27, "01010101334", "ahmadgaffar@outlook.com", Enrollment{1, 70, 10, 90}},
		{"Amir Abdulmaaboud", 38, "01001111700", "amir_coffe@yahoo.com", Enrollment{2, 80, 6, 70}},
		{"Karim Suliman", 32, "01024026326", "karim_suliman@gmail.com", Enrollment{3, 60, 7, 80}},
		{"Muhammad Abdulhamid", 27, "01001235667", "muhammad13Abdulhamid@gmail.com", Enrollment{4, 70, 2, 100}},
		{"Mostafa Mohsen", 25, "01009031990", "mostafa_mohsen12@outlook.com", Enrollment{5, 80, 9, 90}},
		{"Omar El-Ashry", 28, "01001212543", "omar_ashry@outlook.com", Enrollment{6, 80, 5, 70}},
		{"Ali Ibrahim", 27, "01002412693", "ali_ibrahim128@outlook.com", Enrollment{7, 90, 3, 0}},
		{"Abdullah Mansor", 30, "01000660873", "abdullah_mansor@gmail.com", Enrollment{8, 70, 2, 70}},
		{"Magdy Muhammad", 29, "01001718192", "magdy76muhammed@gmail.com", Enrollment{9, 100, 1, 60}},
		{"Ibrahim Tork", 29, "01002359870", "ibrahimtork@gmail.com", Enrollment{10, 50, 1, 80}},
		{"Dagher Abdulnasser", 30, "01096026732", "dagher77@gmail.com", Enrollment{5, 70, 8, 90}},
		{"Saaed Mahmoud", 28, "01011443736", "saaedMahmoud@gmail.com", Enrollment{10, 100, 9, 30}},
	}
	out := make([]*Student, 0, len(rows))
	for _, r := range rows {
		s, err := New(r.name, r.age, r.phone, r.email, r.e)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
