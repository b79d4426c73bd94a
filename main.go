package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/rakawidhi/canteen-app/cache"
	"github.com/rakawidhi/canteen-app/config"
	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/middlewares"
	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/router"
	"github.com/rakawidhi/canteen-app/services"
	"github.com/rakawidhi/canteen-app/stream"
	"github.com/rakawidhi/canteen-app/utils"
)

func main() {
	// Missing .env is fine in containers where the orchestrator sets env.
	_ = godotenv.Load()
	utils.InitLogger()

	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Notification fanout: websocket hub always, Kafka mirror when
	// brokers are configured.
	h := hub.New()
	publisher := services.MultiPublisher{h}
	var producer *stream.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = stream.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024)
		producer.Start()
		publisher = append(publisher, producer)
		utils.InfoLogger.Printf("Mirroring events to kafka topic %s", cfg.KafkaTopic)
	}

	var statusCache *cache.StatusCache
	if cfg.RedisAddr != "" {
		statusCache = cache.New(cfg.RedisAddr)
		defer statusCache.Close()
	}

	var qr services.QRGenerator = services.LocalQR{}
	if cfg.MidtransServerKey != "" {
		qr = services.NewMidtransQR(cfg.MidtransServerKey, cfg.MidtransProduction)
	}

	stockSvc := services.NewStockService(db, publisher)
	orderSvc := services.NewOrderService(db, stockSvc, qr, publisher, statusCache)

	r := router.SetupRouter(router.Deps{
		DB:        db,
		Hub:       h,
		Orders:    orderSvc,
		Stock:     stockSvc,
		Uploader:  services.NewDiskUploader(cfg.UploadDir),
		Publisher: publisher,
		UploadDir: cfg.UploadDir,
		Limiter:   middlewares.NewRateLimiter(50, 100),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.ErrorLogger.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	utils.InfoLogger.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Item{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
