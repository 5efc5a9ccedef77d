package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/internal/repository/unitofwork"
	"ai-notes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Note Repository", func(t *testing.T) {
		count, err := uow.NoteRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Note count: %d", count)
	})

	t.Run("Check Transactional Note Create", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:        userId,
			Email:     "test-integration-" + uuid.New().String() + "@example.com",
			FullName:  "Integration Test User",
			Status:    entity.UserStatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		// Rolled back transaction must leave no row behind
		err = uow.Begin(ctx)
		assert.NoError(t, err)

		noteId := uuid.New()
		note := &entity.Note{
			Id:        noteId,
			Title:     "Integration note",
			Content:   "<p>transactional</p>",
			Tags:      []string{"it"},
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		err = uow.NoteRepository().Create(ctx, note)
		assert.NoError(t, err)

		err = uow.Rollback()
		assert.NoError(t, err)

		found, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
		assert.NoError(t, err)
		assert.Nil(t, found, "rolled back note must not exist")

		// Committed create is visible and searchable
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		err = uow.NoteRepository().Create(ctx, note)
		assert.NoError(t, err)
		err = uow.Commit()
		assert.NoError(t, err)

		results, err := uow.NoteRepository().FindAll(ctx,
			specification.NoteOwnedByUser{UserID: userId},
			specification.NoteSearchQuery{Query: "integration"},
		)
		assert.NoError(t, err)
		assert.Len(t, results, 1)

		// Cleanup
		err = uow.NoteRepository().DeleteAllByUserIdUnscoped(ctx, userId)
		assert.NoError(t, err)
		err = uow.UserRepository().DeleteUnscoped(ctx, userId)
		assert.NoError(t, err)
	})
}
