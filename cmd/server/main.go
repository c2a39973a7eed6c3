package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-tag-registry/internal/config"
	"github.com/iliyamo/vehicle-tag-registry/internal/database"
	"github.com/iliyamo/vehicle-tag-registry/internal/handler"
	"github.com/iliyamo/vehicle-tag-registry/internal/queue"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/router"
	"github.com/iliyamo/vehicle-tag-registry/internal/service"
	"github.com/iliyamo/vehicle-tag-registry/internal/store"
)

func main() {
	// .env is for local development; in deployment the variables come
	// from the environment itself.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := repository.NewTagRepo(db)

	// Redis backs both the pending-OTP keyspace and the public rate
	// limiter. When it is unreachable we degrade: OTP entries live in
	// process memory and the limiter passes everything through.
	rdb := config.NewRedisClient()
	var pending store.PendingChangeStore
	if rdb != nil {
		pending = store.NewRedisPendingStore(rdb)
	} else {
		log.Println("redis unavailable, using in-memory pending store")
		pending = store.NewMemoryPendingStore()
	}

	var sender service.Sender
	if tw, err := service.NewTwilioSender(); err == nil {
		sender = tw
	} else {
		log.Printf("twilio not configured (%v), logging OTP messages instead", err)
		sender = service.LogSender{}
	}

	lifecycle := service.NewLifecycle(repo)
	gate := service.NewOTPGate(repo, pending, sender, cfg.OTPTTL, cfg.OTPBcryptCost)
	resolver := service.NewResolver(repo, cfg.QRSecret, service.PublishTagScanned)
	issuer := service.NewIssuer(repo, cfg.QRSecret, cfg.MaxBatchSize)

	go func() {
		if err := queue.StartScanConsumer(); err != nil {
			log.Printf("scan consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, router.Handlers{
		Tag:    handler.NewTagHandler(lifecycle, cfg.ScanHistory),
		OTP:    handler.NewOTPHandler(gate),
		Public: handler.NewPublicHandler(resolver),
		Admin:  handler.NewAdminHandler(issuer, lifecycle),
	})

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
