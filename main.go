package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elearning/config"
	"elearning/database"
	"elearning/routers"
	"elearning/services"
	"elearning/services/pdfrender"
	"elearning/services/storage"
	"elearning/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalw("Server stopped", "error", err)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	db, err := database.ConnectDb(cfg, logger)
	if err != nil {
		return err
	}

	store, staticDir, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := utils.NewTokenManager(cfg.JWTKey, cfg.JWTTTL)
	svc := routers.NewServices(services.Deps{
		DB:       db,
		Log:      logger,
		Storage:  store,
		Renderer: pdfrender.NewClient(cfg.PDFApiURL, cfg.PDFApiKey, cfg.PDFApiTimeout),
		Mailer:   newMailer(cfg, logger),
	}, tokens, cfg.SaltRound)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, created, err := svc.Users.EnsureAdmin(ctx, services.RegisterInput{
			FullName: cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			return err
		}
		if created {
			logger.Infow("Admin account created", "userId", admin.ID, "email", admin.Email)
		}
	}

	sweeper, err := utils.NewInvoiceSweeper(db, logger, time.Now, cfg.InvoiceSweepSpec)
	if err != nil {
		return err
	}
	housekeeping := utils.NewScheduler("housekeeping", logger)
	err = housekeeping.AddJob("revoked-token-purge", cfg.TokenPurgeSpec, func(ctx context.Context) {
		n, err := svc.Users.PurgeRevokedTokens(ctx)
		if err != nil {
			logger.Errorw("[TOKEN-PURGE] Failed", "error", err)
			return
		}
		if n > 0 {
			logger.Infow("[TOKEN-PURGE] Removed expired revocations", "count", n)
		}
	})
	if err != nil {
		return err
	}

	app := routers.NewApp(routers.Options{
		Log:       logger,
		Tokens:    tokens,
		Services:  svc,
		StaticDir: staticDir,
		AccessLog: true,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("Server is running", "port", cfg.Port, "env", cfg.AppEnv)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		if err := sweeper.Start(); err != nil {
			return err
		}
		if err := housekeeping.Start(); err != nil {
			return err
		}
		<-gctx.Done()

		sweeper.Stop()
		housekeeping.Stop()
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newStorage returns S3 storage when a bucket is configured, otherwise files
// go to the public folder which is then served by the app.
func newStorage(ctx context.Context, cfg *config.Config) (services.ObjectStorage, string, error) {
	if cfg.S3Bucket == "" {
		return storage.NewLocalStorage(cfg.PublicDir, cfg.PublicURL), cfg.PublicDir, nil
	}
	s3, err := storage.NewS3Storage(ctx, storage.S3Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		PublicURL:    cfg.S3PublicURL,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, "", err
	}
	return s3, "", nil
}

func newMailer(cfg *config.Config, logger *zap.SugaredLogger) utils.Mailer {
	if cfg.SendgridAPIKey == "" {
		return utils.NewConsoleMailer(logger)
	}
	return utils.NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailSenderName, cfg.EmailSender, logger)
}
