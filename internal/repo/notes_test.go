package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/testutil"
)

func seedNote(t *testing.T, r *GormRepo, userID, title, content string, created time.Time) *models.Note {
	t.Helper()
	n := &models.Note{UserID: userID, Title: title, Content: content, CreationDate: created, LastTimeModified: created}
	require.NoError(t, r.CreateNote(context.Background(), n))
	return n
}

func TestNotes_ListFilterAndPaging(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedNote(t, r, "u1", "Shopping list", "milk", base)
	seedNote(t, r, "u1", "Work", "Quarterly report", base.Add(time.Hour))
	seedNote(t, r, "u2", "shopping again", "bread", base.Add(2*time.Hour))

	total, items, err := r.ListNotes(ctx, NoteFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "shopping again", items[0].Title)

	total, items, err = r.ListNotes(ctx, NoteFilter{Title: "SHOP"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	total, items, err = r.ListNotes(ctx, NoteFilter{UserID: "u1", Content: "report"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Work", items[0].Title)

	total, _, err = r.ListNotes(ctx, NoteFilter{Query: "bread"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	total, _, err = r.ListNotes(ctx, NoteFilter{UserID: "u1", Query: "shop"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	total, items, err = r.ListNotes(ctx, NoteFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Shopping list", items[0].Title)
}

func TestNotes_FilterWildcardsAreLiteral(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()
	now := time.Now().UTC()

	seedNote(t, r, "u1", "100% done", "a_b", now)
	seedNote(t, r, "u1", "1000 done", "axb", now)
	seedNote(t, r, "u1", `C:\tmp`, "path", now)

	tests := []struct {
		name   string
		filter NoteFilter
		want   int64
	}{
		{name: "percent in title", filter: NoteFilter{Title: "100%"}, want: 1},
		{name: "underscore in content", filter: NoteFilter{Content: "a_b"}, want: 1},
		{name: "underscore in query", filter: NoteFilter{Query: "_"}, want: 1},
		{name: "percent alone", filter: NoteFilter{Query: "%"}, want: 1},
		{name: "backslash", filter: NoteFilter{Title: `:\`}, want: 1},
		{name: "plain text still matches", filter: NoteFilter{Title: "done"}, want: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			total, _, err := r.ListNotes(ctx, tt.filter, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestNotes_OwnerScopedMutations(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()
	n := seedNote(t, r, "owner", "title", "content", time.Now().UTC())

	_, err := r.GetNote(ctx, n.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.GetNote(ctx, n.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "title", got.Title)

	upd := &models.Note{ID: n.ID, Title: "new", Content: "body", LastTimeModified: time.Now().UTC()}
	assert.ErrorIs(t, r.UpdateNote(ctx, upd, "intruder"), ErrNotFound)
	require.NoError(t, r.UpdateNote(ctx, upd, "owner"))

	got, err = r.GetNote(ctx, n.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "body", got.Content)

	byIDs, err := r.ListNotesByIDs(ctx, []string{n.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)

	assert.ErrorIs(t, r.DeleteNote(ctx, n.ID, "intruder"), ErrNotFound)
	require.NoError(t, r.DeleteNote(ctx, n.ID, ""))
	assert.ErrorIs(t, r.DeleteNote(ctx, n.ID, ""), ErrNotFound)
}
