package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	var tags []string
	if len(n.Tags) > 0 {
		_ = json.Unmarshal(n.Tags, &tags)
	}
	if tags == nil {
		tags = []string{}
	}

	var attachments []entity.NoteAttachment
	if len(n.Attachments) > 0 {
		_ = json.Unmarshal(n.Attachments, &attachments)
	}
	if attachments == nil {
		attachments = []entity.NoteAttachment{}
	}

	return &entity.Note{
		Id:            n.Id,
		Title:         n.Title,
		Content:       n.Content,
		Tags:          tags,
		Attachments:   attachments,
		ThumbnailPath: n.ThumbnailPath,
		UserId:        n.UserId,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	attachments := n.Attachments
	if attachments == nil {
		attachments = []entity.NoteAttachment{}
	}
	attachmentsJSON, _ := json.Marshal(attachments)

	return &model.Note{
		Id:            n.Id,
		Title:         n.Title,
		Content:       n.Content,
		Tags:          datatypes.JSON(tagsJSON),
		Attachments:   datatypes.JSON(attachmentsJSON),
		ThumbnailPath: n.ThumbnailPath,
		UserId:        n.UserId,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *NoteMapper) ToEntities(models []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, 0, len(models))
	for _, n := range models {
		entities = append(entities, m.ToEntity(n))
	}
	return entities
}
