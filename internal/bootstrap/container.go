package bootstrap

import (
	"context"
	"log"

	"ai-notes-be/internal/config"
	"ai-notes-be/internal/controller"
	"ai-notes-be/internal/pkg/logger"
	"ai-notes-be/internal/pkg/mailer"
	"ai-notes-be/internal/repository/unitofwork"
	"ai-notes-be/internal/service"
	pkgNats "ai-notes-be/pkg/nats"
	"ai-notes-be/pkg/preview"
	"ai-notes-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController    controller.INoteController
	UserController    controller.IUserController
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	StorageController controller.IStorageController

	// Background services (exposed for main.go to run)
	IndexerService service.IIndexerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(cfg.SMTP)

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Object storage
	store, err := storage.NewS3Storage(context.Background(), storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}
	resolver := storage.NewResolver(store, sysLogger)

	// Shared preview index
	previews := preview.NewIndex()

	// Services
	publisherService := service.NewPublisherService(cfg.App.IndexTopic, pubSub)
	indexerService := service.NewIndexerService(pubSub, cfg.App.IndexTopic, uowFactory, previews, sysLogger)

	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		natsPub,
		store,
		resolver,
		previews,
		sysLogger,
	)
	userService := service.NewUserService(uowFactory, store, resolver, previews, natsPub, sysLogger)
	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg.App.JwtSecret, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, cfg, sysLogger)

	return &Container{
		NoteController:    controller.NewNoteController(noteService),
		UserController:    controller.NewUserController(userService),
		AuthController:    controller.NewAuthController(authService),
		OAuthController:   controller.NewOAuthController(oauthService, cfg.App.ClientURL),
		StorageController: controller.NewStorageController(resolver),
		IndexerService:    indexerService,
		Logger:            sysLogger,
	}
}
