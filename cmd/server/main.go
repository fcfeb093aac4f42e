package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/parkqueue/parkqueue-api/internal/auth"
	"github.com/parkqueue/parkqueue-api/internal/config"
	"github.com/parkqueue/parkqueue-api/internal/handler"
	"github.com/parkqueue/parkqueue-api/internal/mailer"
	"github.com/parkqueue/parkqueue-api/internal/provider"
	"github.com/parkqueue/parkqueue-api/internal/repository"
	"github.com/parkqueue/parkqueue-api/internal/server"
	"github.com/parkqueue/parkqueue-api/internal/usecase"
	"github.com/parkqueue/parkqueue-api/internal/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	identityRepo := repository.NewIdentityMongoRepository(db)
	sessionRepo := repository.NewSessionMongoRepository(db)
	tempUserRepo := repository.NewTempUserMongoRepository(ctx, &logger, db)
	codeRepo := repository.NewVerificationCodeMongoRepository(ctx, &logger, db)
	resetTokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)
	personalInfoRepo := repository.NewPersonalInfoMongoRepository(db)
	motorInfoRepo := repository.NewMotorInfoMongoRepository(db)
	documentRepo := repository.NewDocumentMongoRepository(db)
	txRunner := repository.NewMongoTxRunner(client)

	appMailer := mailer.NewMailer(&logger)
	googleProvider := provider.NewGoogleOAuthProvider(cfg.Google.ClientID)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize validator")
	}

	registrationUsecase := usecase.NewRegistrationUsecase(
		userRepo, identityRepo, tempUserRepo, codeRepo, sessionRepo, jwtAuth, appMailer, cfg, &logger,
	)
	authUsecase := usecase.NewAuthUsecase(
		userRepo, identityRepo, sessionRepo, jwtAuth, googleProvider, cfg,
	)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo, resetTokenRepo, jwtAuth, appMailer, cfg,
	)
	verificationUsecase := usecase.NewVerificationUsecase(
		userRepo, personalInfoRepo, motorInfoRepo, documentRepo, txRunner, appMailer, &logger,
	)

	handlers := server.Handlers{
		Auth: handler.NewAuthHandler(
			registrationUsecase, authUsecase, passwordResetUsecase, jwtAuth, validator, cfg, &logger,
		),
		Verification: handler.NewVerificationHandler(verificationUsecase, validator, &logger),
		System:       handler.NewSystemHandler(mongoPinger{client: client}, appMailer, cfg.StaticDir, &logger),
	}

	srv := server.New(cfg, jwtAuth, handlers, &logger)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
