package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/entity"
	"ai-notes-be/pkg/preview"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndexTopic = "INDEX_NOTE_PREVIEW"

type indexerFixture struct {
	svc       IIndexerService
	publisher IPublisherService
	uow       *fakeUnitOfWork
	previews  *preview.Index
}

func newIndexerFixture(t *testing.T) *indexerFixture {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	uow := newFakeUnitOfWork()
	previews := preview.NewIndex()

	svc := NewIndexerService(pubSub, testIndexTopic, &fakeRepoFactory{uow: uow}, previews, nopLogger{})
	t.Cleanup(svc.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, svc.Consume(ctx))

	return &indexerFixture{
		svc:       svc,
		publisher: NewPublisherService(testIndexTopic, pubSub),
		uow:       uow,
		previews:  previews,
	}
}

func (f *indexerFixture) requestIndex(t *testing.T, noteId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.IndexNotePreviewMessage{NoteId: noteId})
	require.NoError(t, err)
	require.NoError(t, f.publisher.Publish(context.Background(), payload))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestIndexerComputesPreview(t *testing.T) {
	f := newIndexerFixture(t)
	noteId := uuid.New()
	f.uow.notes.notes = append(f.uow.notes.notes, &entity.Note{
		Id:        noteId,
		Title:     "Indexed",
		Content:   "<p>Hello <b>there</b></p>",
		UserId:    uuid.New(),
		CreatedAt: time.Now(),
	})

	f.requestIndex(t, noteId)

	waitFor(t, func() bool { return f.previews.Preview(noteId) != "" })
	assert.Equal(t, "Hello there", f.previews.Preview(noteId))
}

func TestIndexerCoalescesBursts(t *testing.T) {
	f := newIndexerFixture(t)
	noteId := uuid.New()
	f.uow.notes.notes = append(f.uow.notes.notes, &entity.Note{
		Id:        noteId,
		Title:     "Burst",
		Content:   "<p>final text</p>",
		UserId:    uuid.New(),
		CreatedAt: time.Now(),
	})

	// A typing burst produces several index requests inside the window; only
	// the last one should hit the repository.
	for i := 0; i < 5; i++ {
		f.requestIndex(t, noteId)
	}

	waitFor(t, func() bool { return f.previews.Preview(noteId) != "" })
	assert.Equal(t, "final text", f.previews.Preview(noteId))
}

func TestIndexerForgetsDeletedNote(t *testing.T) {
	f := newIndexerFixture(t)
	noteId := uuid.New()
	f.previews.Put(noteId, "Gone", "<p>old</p>", time.Now())

	// No row backs the id anymore.
	f.requestIndex(t, noteId)

	waitFor(t, func() bool { return f.previews.Preview(noteId) == "" })
}

func TestIndexerIgnoresMalformedPayload(t *testing.T) {
	f := newIndexerFixture(t)

	require.NoError(t, f.publisher.Publish(context.Background(), []byte("not json")))

	// Still processes well formed messages afterwards.
	noteId := uuid.New()
	f.uow.notes.notes = append(f.uow.notes.notes, &entity.Note{
		Id:        noteId,
		Title:     "Alive",
		Content:   "<p>still here</p>",
		UserId:    uuid.New(),
		CreatedAt: time.Now(),
	})
	f.requestIndex(t, noteId)

	waitFor(t, func() bool { return f.previews.Preview(noteId) != "" })
}
