package services

import (
	"context"
	"sort"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// NoteFilter narrows a note listing. Zero value means everything.
type NoteFilter struct {
	Tag    string
	Search string
}

type NoteService interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	GetNoteByID(ctx context.Context, id, userID uuid.UUID) (models.Note, error)
	GetNotes(ctx context.Context, userID uuid.UUID, filter NoteFilter) ([]models.Note, error)
	UpdateNote(ctx context.Context, id, userID uuid.UUID, title, content string, tags []string) (models.Note, error)
	DeleteNote(ctx context.Context, id, userID uuid.UUID) error
	ListTags(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type NoteServiceImpl struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteServiceImpl {
	return &NoteServiceImpl{db: db}
}

func (s *NoteServiceImpl) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	if note.ID == uuid.Nil {
		note.ID = uuid.Must(uuid.NewV4())
	}
	if note.Tags == nil {
		note.Tags = models.StringList{}
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteServiceImpl) GetNoteByID(ctx context.Context, id, userID uuid.UUID) (models.Note, error) {
	var note models.Note
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&note)
	return note, result.Error
}

// GetNotes lists the user's notes, newest first. The tag filter matches in
// Go because tags live in a JSON column that both drivers store as text.
func (s *NoteServiceImpl) GetNotes(ctx context.Context, userID uuid.UUID, filter NoteFilter) ([]models.Note, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	var notes []models.Note
	if err := query.Order("updated_at DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	if filter.Tag == "" {
		return notes, nil
	}

	filtered := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Tags.Contains(filter.Tag) {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

func (s *NoteServiceImpl) UpdateNote(ctx context.Context, id, userID uuid.UUID, title, content string, tags []string) (models.Note, error) {
	note, err := s.GetNoteByID(ctx, id, userID)
	if err != nil {
		return models.Note{}, err
	}
	note.Title = title
	note.Content = content
	note.Tags = models.StringList(tags)
	if note.Tags == nil {
		note.Tags = models.StringList{}
	}
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteServiceImpl) DeleteNote(ctx context.Context, id, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTags returns the distinct tags across the user's notes, sorted.
func (s *NoteServiceImpl) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var notes []models.Note
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&notes).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	tags := []string{}
	for _, n := range notes {
		for _, tag := range n.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}
