package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/repository/contract"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory fakes for the unit of work and repositories. They interpret the
// specification structs by type switch, which covers the subset the services
// actually use.

type fakeRepoFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeRepoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeUnitOfWork struct {
	notes *fakeNoteRepo
	users *fakeUserRepo

	begun      int
	committed  int
	rolledBack int
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		notes: &fakeNoteRepo{},
		users: &fakeUserRepo{},
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { u.begun++; return nil }
func (u *fakeUnitOfWork) Commit() error                   { u.committed++; return nil }
func (u *fakeUnitOfWork) Rollback() error                 { u.rolledBack++; return nil }

func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository { return u.notes }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.users }

type fakeNoteRepo struct {
	notes []*entity.Note

	createErr error
	updateErr error

	deletedIds []uuid.UUID
}

func noteMatches(note *entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.NoteOwnedByUser:
			if note.UserId != s.UserID {
				return false
			}
		case specification.NoteSearchQuery:
			q := strings.ToLower(s.Query)
			if !strings.Contains(strings.ToLower(note.Title), q) &&
				!strings.Contains(strings.ToLower(note.Content), q) {
				return false
			}
		}
	}
	return true
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *note
	r.notes = append(r.notes, &copied)
	return nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i, existing := range r.notes {
		if existing.Id == note.Id {
			copied := *note
			r.notes[i] = &copied
			return nil
		}
	}
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deletedIds = append(r.deletedIds, id)
	for i, note := range r.notes {
		if note.Id == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeNoteRepo) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	kept := r.notes[:0]
	for _, note := range r.notes {
		if note.UserId != userId {
			kept = append(kept, note)
		}
	}
	r.notes = kept
	return nil
}

func (r *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	for _, note := range r.notes {
		if noteMatches(note, specs) {
			copied := *note
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var out []*entity.Note
	for _, note := range r.notes {
		if noteMatches(note, specs) {
			copied := *note
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	for _, note := range r.notes {
		if noteMatches(note, specs) {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users     []*entity.User
	providers []*entity.UserProvider

	emailTokens   []*entity.EmailVerificationToken
	resetTokens   []*entity.PasswordResetToken
	refreshTokens []*entity.UserRefreshToken

	avatarUpdates []*string

	purgedTokens     []uuid.UUID
	purgedProviders  []uuid.UUID
	hardDeletedUsers []uuid.UUID
}

func userMatches(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	for i, existing := range r.users {
		if existing.Id == user.Id {
			copied := *user
			r.users[i] = &copied
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeUserRepo) DeleteUnscoped(ctx context.Context, id uuid.UUID) error {
	r.hardDeletedUsers = append(r.hardDeletedUsers, id)
	for i, user := range r.users {
		if user.Id == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, user := range r.users {
		if userMatches(user, specs) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, user := range r.users {
		if userMatches(user, specs) {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	users, _ := r.FindAll(ctx, specs...)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	copied := *token
	r.resetTokens = append(r.resetTokens, &copied)
	return nil
}

func (r *fakeUserRepo) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	for _, token := range r.resetTokens {
		matched := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByToken); ok && token.Token != s.Token {
				matched = false
			}
		}
		if matched {
			copied := *token
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	for _, token := range r.resetTokens {
		if token.Id == id {
			token.Used = true
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	copied := *token
	r.emailTokens = append(r.emailTokens, &copied)
	return nil
}

func (r *fakeUserRepo) FindEmailVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error) {
	for _, token := range r.emailTokens {
		matched := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByToken:
				if token.Token != s.Token {
					matched = false
				}
			case specification.UserOwnedBy:
				if token.UserId != s.UserID {
					matched = false
				}
			}
		}
		if matched {
			copied := *token
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error {
	for i, token := range r.emailTokens {
		if token.Id == id {
			r.emailTokens = append(r.emailTokens[:i], r.emailTokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	copied := *token
	r.refreshTokens = append(r.refreshTokens, &copied)
	return nil
}

func (r *fakeUserRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	for _, token := range r.refreshTokens {
		if token.TokenHash == tokenHash {
			token.Revoked = true
		}
	}
	return nil
}

func (r *fakeUserRepo) PurgeTokensByUserId(ctx context.Context, userId uuid.UUID) error {
	r.purgedTokens = append(r.purgedTokens, userId)
	return nil
}

func (r *fakeUserRepo) ActivateUser(ctx context.Context, userId uuid.UUID) error {
	for _, user := range r.users {
		if user.Id == userId {
			user.Status = entity.UserStatusActive
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, userId uuid.UUID, avatarPath *string) error {
	r.avatarUpdates = append(r.avatarUpdates, avatarPath)
	for _, user := range r.users {
		if user.Id == userId {
			user.AvatarPath = avatarPath
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	for _, user := range r.users {
		if user.Id == userId {
			user.PasswordHash = &hash
		}
	}
	return nil
}

func (r *fakeUserRepo) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	copied := *provider
	r.providers = append(r.providers, &copied)
	return nil
}

func (r *fakeUserRepo) FindUserProvider(ctx context.Context, specs ...specification.Specification) (*entity.UserProvider, error) {
	for _, provider := range r.providers {
		matched := true
		for _, spec := range specs {
			if s, ok := spec.(specification.UserOwnedBy); ok && provider.UserId != s.UserID {
				matched = false
				break
			}
		}
		if matched {
			copied := *provider
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteUserProvidersByUserId(ctx context.Context, userId uuid.UUID) error {
	r.purgedProviders = append(r.purgedProviders, userId)
	return nil
}

// fakeStore records uploads and deletes and can be told to fail either.

type fakeStore struct {
	uploadErr error
	deleteErr error

	uploaded []string
	deleted  []string
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return f.deleteErr
}

func (f *fakeStore) SignedGetURL(ctx context.Context, path string) (string, error) {
	return "https://signed.example.com/" + path, nil
}

// fakeEmailService is safe for the async sends the auth service performs.
type fakeEmailService struct {
	mu        sync.Mutex
	otpSent   []string
	resetSent []string
}

func (f *fakeEmailService) SendOTP(to string, otp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpSent = append(f.otpSent, to)
	return nil
}

func (f *fakeEmailService) SendResetToken(to string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetSent = append(f.resetSent, to)
	return nil
}

type fakePublisher struct {
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
