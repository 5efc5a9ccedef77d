package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/entity"
	"ai-notes-be/internal/pkg/logger"
	"ai-notes-be/internal/repository/specification"
	"ai-notes-be/internal/repository/unitofwork"
	"ai-notes-be/pkg/events"
	pkgNats "ai-notes-be/pkg/nats"
	"ai-notes-be/pkg/preview"
	"ai-notes-be/pkg/storage"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	UploadAvatar(ctx context.Context, userId uuid.UUID, filename, mimeType string, body io.Reader) (*dto.UploadAvatarResponse, error)
	ExportNotes(ctx context.Context, userId uuid.UUID) (*dto.ExportNotesResponse, string, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          storage.ObjectStorage
	resolver       *storage.Resolver
	previews       *preview.Index
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	store storage.ObjectStorage,
	resolver *storage.Resolver,
	previews *preview.Index,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		store:          store,
		resolver:       resolver,
		previews:       previews,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	return s.toProfileResponse(ctx, uow, user)
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}

	if err := repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toProfileResponse(ctx, uow, user)
}

// UploadAvatar stores the new image before the user row points at it and only
// then removes the previous object. External avatar urls (from OAuth) are
// never deleted.
func (s *userService) UploadAvatar(ctx context.Context, userId uuid.UUID, filename, mimeType string, body io.Reader) (*dto.UploadAvatarResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	key := storage.BuildObjectKey(userId, "avatars", userId.String(), filename, mimeType)
	if err := s.store.Upload(ctx, key, mimeType, body); err != nil {
		return nil, err
	}

	var oldPath string
	if user.AvatarPath != nil {
		oldPath = *user.AvatarPath
	}

	if err := repo.UpdateAvatar(ctx, userId, &key); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	if oldPath != "" && !storage.IsExternal(oldPath) {
		s.deleteObject(ctx, oldPath)
	}

	return &dto.UploadAvatarResponse{
		AvatarURL: s.resolver.Resolve(ctx, key),
	}, nil
}

// ExportNotes returns the full notes dataset wrapped in an envelope carrying
// the export timestamp and owner id, plus the suggested download filename.
func (s *userService) ExportNotes(ctx context.Context, userId uuid.UUID) (*dto.ExportNotesResponse, string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, "", err
	}

	exportedAt := time.Now()
	exported := make([]dto.ExportedNote, 0, len(notes))
	for _, note := range notes {
		paths := make([]string, 0, len(note.Attachments))
		for _, a := range note.Attachments {
			paths = append(paths, a.Path)
		}
		exported = append(exported, dto.ExportedNote{
			Id:          note.Id,
			Title:       note.Title,
			Content:     note.Content,
			Tags:        note.Tags,
			Attachments: paths,
			CreatedAt:   note.CreatedAt,
			UpdatedAt:   note.UpdatedAt,
		})
	}

	filename := fmt.Sprintf("ai-notes-export-%s.json", exportedAt.Format("2006-01-02"))
	return &dto.ExportNotesResponse{
		ExportedAt: exportedAt,
		UserId:     userId,
		Notes:      exported,
	}, filename, nil
}

// DeleteAccount removes everything the user owns. Object storage cleanup runs
// first and is best effort; the database rows go away regardless, inside one
// transaction, so a flaky object store can never leave a half-deleted account.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.NoteOwnedByUser{UserID: userId})
	if err != nil {
		return err
	}

	for _, note := range notes {
		for _, path := range note.StoragePaths(storage.IsExternal) {
			s.deleteObject(ctx, path)
		}
	}
	if user.AvatarPath != nil && *user.AvatarPath != "" && !storage.IsExternal(*user.AvatarPath) {
		s.deleteObject(ctx, *user.AvatarPath)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().PurgeTokensByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUserProvidersByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	for _, note := range notes {
		s.previews.Forget(note.Id)
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "USER_DELETED",
			Data: map[string]interface{}{
				"user_id": userId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("user_service", "failed to publish event", map[string]interface{}{
				"event": "USER_DELETED",
				"error": err.Error(),
			})
		}
	}

	return nil
}

func (s *userService) toProfileResponse(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*dto.UserProfileResponse, error) {
	avatarURL := ""
	if user.AvatarPath != nil && *user.AvatarPath != "" {
		avatarURL = s.resolver.Resolve(ctx, *user.AvatarPath)
	} else {
		provider, err := uow.UserRepository().FindUserProvider(ctx, specification.UserOwnedBy{UserID: user.Id})
		if err != nil {
			return nil, err
		}
		if provider != nil {
			avatarURL = provider.AvatarURL
		}
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.FullName
	}
	if displayName == "" {
		displayName = emailLocalPart(user.Email)
	}

	return &dto.UserProfileResponse{
		Id:          user.Id,
		Email:       user.Email,
		FullName:    user.FullName,
		DisplayName: displayName,
		Timezone:    user.Timezone,
		Status:      string(user.Status),
		AvatarURL:   avatarURL,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// emailLocalPart is the display name of last resort for accounts that
// never supplied one, such as Google sign-ups with an empty profile name.
func emailLocalPart(email string) string {
	return strings.SplitN(email, "@", 2)[0]
}

func (s *userService) deleteObject(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.log.Warn("user_service", "failed to delete object", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
