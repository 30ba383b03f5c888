package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/notes/internal/models"
)

// NoteFilter narrows note listings. Empty fields match everything.
type NoteFilter struct {
	UserID  string
	Title   string
	Content string
	// Query matches notes whose title or content contains it.
	Query string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in a lower-cased column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (f NoteFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, containsPattern(t))
	}
	if c := strings.TrimSpace(f.Content); c != "" {
		db = db.Where(`LOWER(content) LIKE ? ESCAPE '\'`, containsPattern(c))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := containsPattern(q)
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, like, like)
	}
	return db
}

func (r *GormRepo) CreateNote(ctx context.Context, n *models.Note) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// GetNote loads a note by id; a non-empty userID restricts the lookup to that owner.
func (r *GormRepo) GetNote(ctx context.Context, id, userID string) (*models.Note, error) {
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var n models.Note
	if err := q.First(&n).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *GormRepo) ListNotes(ctx context.Context, f NoteFilter, offset, limit int) (int64, []models.Note, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Note{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Note, 0, limit)
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Note{})).
		Order("creation_date DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListNotesByIDs(ctx context.Context, ids []string) ([]models.Note, error) {
	items := make([]models.Note, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateNote overwrites title, content and modification time of n. A non-empty
// userID restricts the update to that owner.
func (r *GormRepo) UpdateNote(ctx context.Context, n *models.Note, userID string) error {
	q := r.DB.WithContext(ctx).Model(&models.Note{}).Where("id = ?", n.ID)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	res := q.Updates(map[string]any{
		"title":              n.Title,
		"content":            n.Content,
		"last_time_modified": n.LastTimeModified,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteNote(ctx context.Context, id, userID string) error {
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	res := q.Delete(&models.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
