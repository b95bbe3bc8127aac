package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-ddd-storefront/config"
	"github.com/oksasatya/go-ddd-storefront/internal/container"
	esinfra "github.com/oksasatya/go-ddd-storefront/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-ddd-storefront/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/go-ddd-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-storefront/internal/infrastructure/stripe"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-storefront/internal/router"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	"github.com/oksasatya/go-ddd-storefront/pkg/mailer"
	"github.com/oksasatya/go-ddd-storefront/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	c, err := buildContainer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer c.Close()

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Recovery(logger))
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// buildContainer opens every client the server needs. Optional integrations
// are left nil when their settings are empty.
func buildContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*container.Container, error) {
	c := &container.Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	c.PGPool = pool

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := helpers.PingRedis(ctx, c.Redis); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	c.JWT = helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL)

	// Notifications: queue to the email worker, or only log them locally
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		c.RabbitPub = pub
		c.Notifier = mailer.NewQueueNotifier(pub)
	} else {
		c.Notifier = mailer.NewLogNotifier(logger)
	}

	// Invoice copies: GCS bucket when configured, local directory otherwise
	if cfg.InvoiceBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		c.GCS = gcs
		c.Invoices = objectstore.NewGCSStore(gcs, cfg.InvoiceBucket)
	} else {
		c.Invoices = objectstore.NewLocalStore(cfg.InvoiceDir)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init elasticsearch: %w", err)
		}
		c.ES = es
		c.Indexer = esinfra.NewOrderIndexer(es, cfg.ESOrdersIndex)
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is empty; checkout calls will be rejected by the provider")
	}
	c.Payments = stripe.NewGateway(cfg.StripeSecretKey, cfg.StripeCurrency)

	return c, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
