package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/metrics"
	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/mykafka"
	"github.com/Skotchmaster/notes/internal/repo"
	"github.com/Skotchmaster/notes/internal/transport"
	"github.com/Skotchmaster/notes/internal/util"
)

type NoteStore interface {
	CreateNote(ctx context.Context, n *models.Note) error
	GetNote(ctx context.Context, id, userID string) (*models.Note, error)
	ListNotes(ctx context.Context, f repo.NoteFilter, offset, limit int) (int64, []models.Note, error)
	ListNotesByIDs(ctx context.Context, ids []string) ([]models.Note, error)
	UpdateNote(ctx context.Context, n *models.Note, userID string) error
	DeleteNote(ctx context.Context, id, userID string) error
}

// NoteIndex is the full-text side of note storage.
type NoteIndex interface {
	IndexNote(ctx context.Context, n *models.Note) error
	DeleteNote(ctx context.Context, id string) error
	Search(ctx context.Context, userID, query string, from, size int) (int64, []string, error)
}

// NoteService owns note CRUD. Methods taking userID scope the operation to
// that owner; an empty userID means an admin acting on any note.
type NoteService struct {
	Notes  NoteStore
	Index  NoteIndex
	Events EventPublisher
	Now    func() time.Time
}

func (s *NoteService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *NoteService) Create(ctx context.Context, userID string, req transport.CreateNoteRequest) (*models.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteService.Create")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "notes.create")

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	now := s.now()
	n := &models.Note{
		UserID:           userID,
		Title:            req.Title,
		Content:          req.Content,
		CreationDate:     now,
		LastTimeModified: now,
	}
	if err := s.Notes.CreateNote(ctx, n); err != nil {
		l.Error("create_note_error", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, n)
	publish(ctx, s.Events, mykafka.TopicNoteEvents, n.ID, map[string]any{
		"type":   "note_created",
		"noteID": n.ID,
		"userID": userID,
	})
	l.Info("note_created", "note_id", n.ID, "user_id", userID)
	return n, nil
}

func (s *NoteService) Get(ctx context.Context, id, userID string) (*models.Note, error) {
	n, err := s.Notes.GetNote(ctx, id, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return n, nil
}

// List returns one page of notes matching f along with the total match count.
func (s *NoteService) List(ctx context.Context, f repo.NoteFilter, page, size int) (int64, []models.Note, error) {
	start := time.Now()
	defer metrics.ObserveNoteQuery("sql", start)

	offset, limit := util.Calculate(page, size)
	total, items, err := s.Notes.ListNotes(ctx, f, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_notes_error", "status", 500, "error", err)
		return 0, nil, err
	}
	return total, items, nil
}

func (s *NoteService) Update(ctx context.Context, userID string, req transport.UpdateNoteRequest) (*models.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteService.Update")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "notes.update")

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	n, err := s.Notes.GetNote(ctx, req.ID, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	n.Title = req.Title
	n.Content = req.Content
	n.LastTimeModified = s.now()

	if err := s.Notes.UpdateNote(ctx, n, userID); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Error("update_note_error", "status", 500, "error", err)
		}
		return nil, mapRepoErr(err)
	}

	s.index(ctx, n)
	publish(ctx, s.Events, mykafka.TopicNoteEvents, n.ID, map[string]any{
		"type":   "note_updated",
		"noteID": n.ID,
		"userID": n.UserID,
	})
	l.Info("note_updated", "note_id", n.ID)
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, userID string, req transport.DeleteNoteRequest) error {
	ctx, span := tracer.Start(ctx, "NoteService.Delete")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "notes.delete")

	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := s.Notes.DeleteNote(ctx, req.ID, userID); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Error("delete_note_error", "status", 500, "error", err)
		}
		return mapRepoErr(err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteNote(ctx, req.ID); err != nil {
			l.Warn("unindex_note_failed", "note_id", req.ID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicNoteEvents, req.ID, map[string]any{
		"type":   "note_deleted",
		"noteID": req.ID,
	})
	l.Info("note_deleted", "note_id", req.ID)
	return nil
}

// Search runs a full-text query. The index answers when configured; any
// index failure falls back to a case-insensitive match in the database.
func (s *NoteService) Search(ctx context.Context, userID, query string, page, size int) (int64, []models.Note, error) {
	ctx, span := tracer.Start(ctx, "NoteService.Search")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "notes.search")

	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		start := time.Now()
		total, ids, err := s.Index.Search(ctx, userID, query, offset, limit)
		if err == nil {
			items, err := s.Notes.ListNotesByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			metrics.ObserveNoteQuery("elasticsearch", start)
			return total, orderByIDs(items, ids), nil
		}
		l.Warn("search_index_failed", "error", err)
	}

	return s.List(ctx, repo.NoteFilter{UserID: userID, Query: query}, page, size)
}

func (s *NoteService) index(ctx context.Context, n *models.Note) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexNote(ctx, n); err != nil {
		logging.FromContext(ctx).Warn("index_note_failed", "note_id", n.ID, "error", err)
	}
}

// orderByIDs restores the relevance order of ids; notes missing from the
// database are dropped.
func orderByIDs(items []models.Note, ids []string) []models.Note {
	byID := make(map[string]models.Note, len(items))
	for _, n := range items {
		byID[n.ID] = n
	}
	out := make([]models.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func mapRepoErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
