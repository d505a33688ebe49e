package students

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mustStudent(t *testing.T, name string, age int, e Enrollment) *Student {
	t.Helper()
	s, err := New(name, age, "", "", e)
	require.NoError(t, err)
	return s
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := New("Lina Hassan", 24, "01012345678", "lina@example.com", Enrollment{
		Subject1: 3, Grade1: 85,
		Subject2: 7, Grade2: 95,
	})
	require.NoError(t, err)
	require.NoError(t, st.Create(ctx, s))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "Lina Hassan", got.Name)
	assert.Equal(t, "01012345678", got.Phone)
	assert.Equal(t, "lina@example.com", got.Email)
	assert.Equal(t, s.Grades, got.Grades)
	assert.Equal(t, 2, got.Finished)
	assert.Equal(t, 90.0, got.GPA)
}

func TestSQLiteStoreUpdate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s := mustStudent(t, "Lina Hassan", 24, Enrollment{Subject1: 3, Grade1: 85, Subject2: 7, Grade2: 95})
	require.NoError(t, st.Create(ctx, s))

	require.NoError(t, s.Upgrade(Enrollment{Subject1: 1, Grade1: 60, Subject2: 2, Grade2: 70}))
	require.NoError(t, st.Update(ctx, s))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Age)
	assert.Equal(t, 4, got.Finished)
	assert.Equal(t, 77.5, got.GPA)
	assert.Equal(t, 60.0, got.Grades[0])
}

func TestSQLiteStoreMissingStudent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	unknown := uuid.New()

	_, err := st.Get(ctx, unknown)
	assert.ErrorIs(t, err, ErrNotFound)

	s := mustStudent(t, "Ghost", 30, Enrollment{Subject1: 1, Grade1: 50, Subject2: 2, Grade2: 50})
	s.ID = unknown
	assert.ErrorIs(t, st.Update(ctx, s), ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, unknown), ErrNotFound)
}

func TestSQLiteStoreListAndIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created := []*Student{
		mustStudent(t, "A", 20, Enrollment{Subject1: 1, Grade1: 60, Subject2: 2, Grade2: 60}),
		mustStudent(t, "B", 21, Enrollment{Subject1: 3, Grade1: 70, Subject2: 4, Grade2: 70}),
		mustStudent(t, "C", 22, Enrollment{Subject1: 5, Grade1: 80, Subject2: 6, Grade2: 80}),
	}
	for _, s := range created {
		require.NoError(t, st.Create(ctx, s))
	}

	all, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	names := map[string]bool{}
	for _, s := range all {
		names[s.Name] = true
	}
	assert.True(t, names["A"] && names["B"] && names["C"])

	ids, err := st.ListIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for _, want := range created {
		assert.Contains(t, ids, want.ID)
	}
}

func TestSQLiteStoreListEmpty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	all, err := st.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Len(t, all, 0)

	ids, err := st.ListIDs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Len(t, ids, 0)
}

func TestSQLiteStoreListByGPA(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, s := range []*Student{
		mustStudent(t, "High", 20, Enrollment{Subject1: 1, Grade1: 90, Subject2: 2, Grade2: 90}),
		mustStudent(t, "Mid", 21, Enrollment{Subject1: 1, Grade1: 75, Subject2: 2, Grade2: 75}),
		mustStudent(t, "Low", 22, Enrollment{Subject1: 1, Grade1: 60, Subject2: 2, Grade2: 60}),
	} {
		require.NoError(t, st.Create(ctx, s))
	}

	got, err := st.ListByGPA(ctx, 70, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "High", got[0].Name, "highest GPA first")
	assert.Equal(t, "Mid", got[1].Name)

	exact, err := st.ListByGPA(ctx, 75, 75)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "Mid", exact[0].Name)

	none, err := st.ListByGPA(ctx, 95, 100)
	require.NoError(t, err)
	assert.Len(t, none, 0)
}

func TestSQLiteStoreHistory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	got, err := st.History(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got, "no history yet")

	msgs := []ChatMessage{
		{Role: "system", Content: "You are a tutor."},
		{Role: "user", Content: "Explain recursion."},
		{Role: "assistant", Content: "Recursion is a function calling itself."},
	}
	require.NoError(t, st.PutHistory(ctx, id, msgs))

	got, err = st.History(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	msgs = append(msgs, ChatMessage{Role: "user", Content: "Give an example."})
	require.NoError(t, st.PutHistory(ctx, id, msgs))

	got, err = st.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Give an example.", got[3].Content)

	require.NoError(t, st.DeleteHistory(ctx, id))
	got, err = st.History(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	require.NoError(t, st.DeleteHistory(ctx, id))
}

func TestSQLiteStoreDeleteRemovesHistory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s := mustStudent(t, "Lina Hassan", 24, Enrollment{Subject1: 3, Grade1: 85, Subject2: 7, Grade2: 95})
	require.NoError(t, st.Create(ctx, s))
	require.NoError(t, st.PutHistory(ctx, s.ID, []ChatMessage{{Role: "user", Content: "hi"}}))

	require.NoError(t, st.Delete(ctx, s.ID))

	_, err := st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := st.History(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSeed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, st))
	all, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 12)

	// A second seed must not duplicate the roster.
	require.NoError(t, Seed(ctx, st))
	all, err = st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}
