package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/pkg/logger"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/internal/repository/unitofwork"
	"ai-notes-be/pkg/events"
	"ai-notes-be/pkg/htmltext"
	pkgNats "ai-notes-be/pkg/nats"
	"ai-notes-be/pkg/preview"
	"ai-notes-be/pkg/storage"

	"github.com/google/uuid"
)

// maxNotesPerUser is the free tier quota. Creation beyond it fails with
// ErrNoteLimitReached; existing notes are never touched by the limit.
const maxNotesPerUser = 5

const previewLength = 160

// Rich text editors submit markers like "<p><br></p>" for an emptied note.
// Content with no visible text is stored as the empty string.
func normalizeContent(content string) string {
	if htmltext.ToPlainText(content) == "" {
		return ""
	}
	return content
}

type INoteService interface {
	List(ctx context.Context, userId uuid.UUID, quickFilter string, limit, offset int) (*dto.ListNotesResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SearchNotesResponse, error)

	AddAttachment(ctx context.Context, userId, noteId uuid.UUID, filename, mimeType string, size int64, body io.Reader) (*dto.AddAttachmentResponse, error)
	RemoveAttachment(ctx context.Context, userId, noteId uuid.UUID, attachmentId string) error
	SetThumbnail(ctx context.Context, userId, noteId uuid.UUID, filename, mimeType string, body io.Reader) (*dto.SetThumbnailResponse, error)
	RemoveThumbnail(ctx context.Context, userId, noteId uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pkgNats.Publisher
	store            storage.ObjectStorage
	resolver         *storage.Resolver
	previews         *preview.Index
	log              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pkgNats.Publisher,
	store storage.ObjectStorage,
	resolver *storage.Resolver,
	previews *preview.Index,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		store:            store,
		resolver:         resolver,
		previews:         previews,
		log:              log,
	}
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	count, err := uow.NoteRepository().Count(ctx, specification.NoteOwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}
	if count >= maxNotesPerUser {
		return nil, ErrNoteLimitReached
	}

	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   normalizeContent(req.Content),
		Tags:      req.Tags,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.requestPreviewIndex(ctx, note.Id)
	s.publishEvent(ctx, "NOTE_CREATED", note.Id, userId, note.Title)

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID, quickFilter string, limit, offset int) (*dto.ListNotesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	notes, err := repo.FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NoteListItemResponse, 0, len(notes))
	for _, note := range notes {
		s.previews.Put(note.Id, note.Title, note.Content, noteVersion(note))
		if quickFilter != "" && !s.previews.Matches(note.Id, quickFilter) {
			continue
		}
		items = append(items, dto.NoteListItemResponse{
			Id:           note.Id,
			Title:        note.Title,
			Preview:      s.notePreview(note),
			Tags:         note.Tags,
			ThumbnailURL: s.resolver.Resolve(ctx, note.ThumbnailPath),
			CreatedAt:    note.CreatedAt,
			UpdatedAt:    note.UpdatedAt,
		})
	}

	total := int64(len(items))
	if limit > 0 {
		if offset > len(items) {
			offset = len(items)
		}
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		items = items[offset:end]
	}

	return &dto.ListNotesResponse{Notes: items, Total: total}, nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	note, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	attachments := make([]dto.AttachmentResponse, 0, len(note.Attachments))
	for _, a := range note.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			Id:   a.Id,
			Name: a.Name,
			Path: a.Path,
			Size: a.Size,
			Type: a.Type,
			URL:  s.resolver.Resolve(ctx, a.Path),
		})
	}

	return &dto.ShowNoteResponse{
		Id:           note.Id,
		Title:        note.Title,
		Content:      note.Content,
		Tags:         note.Tags,
		Attachments:  attachments,
		ThumbnailURL: s.resolver.Resolve(ctx, note.ThumbnailPath),
		CreatedAt:    note.CreatedAt,
		UpdatedAt:    note.UpdatedAt,
	}, nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = normalizeContent(*req.Content)
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	now := time.Now()
	note.UpdatedAt = &now

	if err := repo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.requestPreviewIndex(ctx, note.Id)
	s.publishEvent(ctx, "NOTE_UPDATED", note.Id, userId, note.Title)

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

// Delete removes the row and then forgets cached state. Storage cleanup runs
// first but is best effort: a failed object delete is logged and the row is
// removed anyway, so the user never ends up with an undeletable note.
func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNotFound
	}

	s.cleanupStorage(ctx, note)

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	s.previews.Forget(id)
	s.publishEvent(ctx, "NOTE_DELETED", id, userId, note.Title)
	return nil
}

func (s *noteService) Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SearchNotesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.NoteSearchQuery{Query: query},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchNotesResponse, 0, len(notes))
	for _, note := range notes {
		s.previews.Put(note.Id, note.Title, note.Content, noteVersion(note))
		results = append(results, &dto.SearchNotesResponse{
			Id:        note.Id,
			Title:     note.Title,
			Preview:   s.notePreview(note),
			Tags:      note.Tags,
			CreatedAt: note.CreatedAt,
			UpdatedAt: note.UpdatedAt,
		})
	}
	return results, nil
}

func (s *noteService) AddAttachment(ctx context.Context, userId, noteId uuid.UUID, filename, mimeType string, size int64, body io.Reader) (*dto.AddAttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}

	key := storage.BuildObjectKey(userId, "attachments", noteId.String(), filename, mimeType)
	if err := s.store.Upload(ctx, key, mimeType, body); err != nil {
		return nil, err
	}

	attachment := entity.NoteAttachment{
		Id:   key,
		Name: filename,
		Path: key,
		Size: size,
		Type: mimeType,
	}
	note.Attachments = append(note.Attachments, attachment)
	now := time.Now()
	note.UpdatedAt = &now

	if err := repo.Update(ctx, note); err != nil {
		// Row update failed, drop the orphaned object.
		s.deleteObject(ctx, key)
		return nil, err
	}

	return &dto.AddAttachmentResponse{
		Attachment: dto.AttachmentResponse{
			Id:   attachment.Id,
			Name: attachment.Name,
			Path: attachment.Path,
			Size: attachment.Size,
			Type: attachment.Type,
			URL:  s.resolver.Resolve(ctx, key),
		},
	}, nil
}

func (s *noteService) RemoveAttachment(ctx context.Context, userId, noteId uuid.UUID, attachmentId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNotFound
	}

	idx := -1
	for i, a := range note.Attachments {
		if a.Id == attachmentId {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	removed := note.Attachments[idx]
	note.Attachments = append(note.Attachments[:idx], note.Attachments[idx+1:]...)
	now := time.Now()
	note.UpdatedAt = &now

	if err := repo.Update(ctx, note); err != nil {
		return err
	}

	if !storage.IsExternal(removed.Path) {
		s.deleteObject(ctx, removed.Path)
	}
	return nil
}

// SetThumbnail uploads the replacement before touching the old object, so a
// failed upload leaves the previous thumbnail intact.
func (s *noteService) SetThumbnail(ctx context.Context, userId, noteId uuid.UUID, filename, mimeType string, body io.Reader) (*dto.SetThumbnailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}

	key := storage.BuildObjectKey(userId, "thumbnails", noteId.String(), filename, mimeType)
	if err := s.store.Upload(ctx, key, mimeType, body); err != nil {
		return nil, err
	}

	oldPath := note.ThumbnailPath
	note.ThumbnailPath = key
	now := time.Now()
	note.UpdatedAt = &now

	if err := repo.Update(ctx, note); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	if oldPath != "" && !storage.IsExternal(oldPath) {
		s.deleteObject(ctx, oldPath)
	}

	return &dto.SetThumbnailResponse{
		Id:           note.Id,
		ThumbnailURL: s.resolver.Resolve(ctx, key),
	}, nil
}

func (s *noteService) RemoveThumbnail(ctx context.Context, userId, noteId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	note, err := repo.FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNotFound
	}

	oldPath := note.ThumbnailPath
	note.ThumbnailPath = ""
	now := time.Now()
	note.UpdatedAt = &now

	if err := repo.Update(ctx, note); err != nil {
		return err
	}

	if oldPath != "" && !storage.IsExternal(oldPath) {
		s.deleteObject(ctx, oldPath)
	}
	return nil
}

// helpers

func (s *noteService) findOwned(ctx context.Context, userId, id uuid.UUID) (*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

func (s *noteService) notePreview(note *entity.Note) string {
	text := s.previews.Preview(note.Id)
	if text == "" {
		text = htmltext.ToPlainText(note.Content)
	}
	return htmltext.Truncate(text, previewLength)
}

func (s *noteService) cleanupStorage(ctx context.Context, note *entity.Note) {
	for _, path := range note.StoragePaths(storage.IsExternal) {
		s.deleteObject(ctx, path)
	}
}

func (s *noteService) deleteObject(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.log.Warn("note_service", "failed to delete object", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func (s *noteService) requestPreviewIndex(ctx context.Context, noteId uuid.UUID) {
	payload, err := json.Marshal(dto.IndexNotePreviewMessage{NoteId: noteId})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("note_service", "failed to publish index message", map[string]interface{}{
			"note_id": noteId.String(),
			"error":   err.Error(),
		})
	}
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, noteId, userId uuid.UUID, title string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"note_id": noteId,
			"user_id": userId,
			"title":   title,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("note_service", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func noteVersion(note *entity.Note) time.Time {
	if note.UpdatedAt != nil {
		return *note.UpdatedAt
	}
	return note.CreatedAt
}
