package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/pkg/logger"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/internal/repository/unitofwork"
	"ai-notes-be/pkg/debounce"
	"ai-notes-be/pkg/preview"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// indexDebounceWindow coalesces rapid edits of the same note into one preview
// recompute. Only the newest pending request per note survives the window.
const indexDebounceWindow = 300 * time.Millisecond

type IIndexerService interface {
	Consume(ctx context.Context) error
	Close()
}

type indexerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	previews   *preview.Index
	debouncer  *debounce.Debouncer
	log        logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	previews *preview.Index,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		previews:   previews,
		debouncer:  debounce.New(indexDebounceWindow),
		log:        log,
	}
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexerService) Close() {
	s.debouncer.Stop()
}

func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexNotePreviewMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("indexer_service", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	noteId := payload.NoteId
	s.debouncer.Trigger(noteId.String(), func(apply func() bool) {
		s.refreshPreview(ctx, apply, noteId)
	})
	msg.Ack()
}

func (s *indexerService) refreshPreview(ctx context.Context, apply func() bool, noteId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		s.log.Error("indexer_service", "failed to load note", map[string]interface{}{
			"note_id": noteId.String(),
			"error":   err.Error(),
		})
		return
	}
	if note == nil {
		// Deleted between the edit and the window firing.
		if apply() {
			s.previews.Forget(noteId)
		}
		return
	}

	// A newer edit superseded this one while we were reading; its own trigger
	// will index the fresher content.
	if !apply() {
		return
	}

	version := note.CreatedAt
	if note.UpdatedAt != nil {
		version = *note.UpdatedAt
	}
	s.previews.Put(note.Id, note.Title, note.Content, version)
}
