package main

import (
	"context"
	"log"
	"os"
	"time"

	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/repository/implementation"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo account with a handful of notes for local development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	userRepo := implementation.NewUserRepository(db)
	noteRepo := implementation.NewNoteRepository(db)

	existing, err := userRepo.FindOne(ctx, specification.ByEmail{Email: "demo@example.com"})
	if err != nil {
		log.Fatalf("Error: lookup failed: %v", err)
	}
	if existing != nil {
		log.Println("Demo user already exists, nothing to do.")
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	hashStr := string(hash)
	now := time.Now()

	user := &entity.User{
		Id:              uuid.New(),
		Email:           "demo@example.com",
		PasswordHash:    &hashStr,
		FullName:        "Demo User",
		DisplayName:     "Demo",
		Timezone:        "UTC",
		Status:          entity.UserStatusActive,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatalf("Error: failed to create demo user: %v", err)
	}

	notes := []entity.Note{
		{
			Title:   "Welcome to AI Notes",
			Content: "<p>This is your first note. Edit it, tag it, attach files.</p>",
			Tags:    []string{"getting-started"},
		},
		{
			Title:   "Grocery list",
			Content: "<ul><li>Coffee</li><li>Oat milk</li><li>Bananas</li></ul>",
			Tags:    []string{"personal"},
		},
		{
			Title:   "Meeting notes 2025-01-15",
			Content: "<p>Discussed the <b>Q1 roadmap</b> and upcoming launches.</p>",
			Tags:    []string{"work", "meetings"},
		},
	}

	for i := range notes {
		notes[i].Id = uuid.New()
		notes[i].UserId = user.Id
		notes[i].CreatedAt = now
		if err := noteRepo.Create(ctx, &notes[i]); err != nil {
			log.Fatalf("Error: failed to create note %q: %v", notes[i].Title, err)
		}
	}

	log.Printf("Seeded demo user %s with %d notes.", user.Email, len(notes))
}
