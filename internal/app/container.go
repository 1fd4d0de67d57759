package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/config"
	httpx "github.com/you/rakshasetu/internal/http"
	"github.com/you/rakshasetu/internal/http/handlers"
	"github.com/you/rakshasetu/internal/http/middleware"
	"github.com/you/rakshasetu/internal/infrastructure/audit"
	"github.com/you/rakshasetu/internal/infrastructure/auth"
	"github.com/you/rakshasetu/internal/infrastructure/database"
	"github.com/you/rakshasetu/internal/infrastructure/notifications"
	"github.com/you/rakshasetu/internal/infrastructure/repositories"
	"github.com/you/rakshasetu/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	KafkaAudit  *audit.KafkaAuditLogger

	// Repositories
	UserRepo       domain.UserRepository
	ChallengeStore domain.ChallengeStore

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditLogger     domain.AuditLogger
	OTPSvc          *services.OTPServiceImpl
	AuthSvc         *services.AuthServiceImpl

	// HTTP
	Router *gin.Engine
}

// NewContainer opens postgres (and redis when the challenge store needs it)
// and wires every dependency on top.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required (set database.dsn or DATABASE_DSN)")
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var rdb *redis.Client
	if cfg.ChallengeStore == config.StoreRedis {
		rdb, err = database.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	c, err := NewContainerWith(cfg, db, rdb)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = database.Close(db)
		return nil, err
	}
	return c, nil
}

// NewContainerWith wires the service over an already opened database and an
// optional redis client.
func NewContainerWith(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	container := &Container{Config: cfg, DB: db, RedisClient: rdb}

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := container.initRepositories(); err != nil {
		return nil, err
	}
	container.initServices()
	container.initHTTP()

	return container, nil
}

func (c *Container) initRepositories() error {
	c.UserRepo = repositories.NewUserRepository(c.DB)

	switch c.Config.ChallengeStore {
	case config.StoreRedis:
		if c.RedisClient == nil {
			return errors.New("redis challenge store selected without a redis client")
		}
		c.ChallengeStore = repositories.NewRedisChallengeStore(c.RedisClient, c.Config.ChallengeRetention)
	default:
		c.ChallengeStore = repositories.NewMemoryChallengeStore(c.Config.ChallengeRetention)
	}
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(cfg.BcryptCost)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)

	c.NotificationSvc = notifications.NewChannelRouter(
		notifications.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom),
		notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom),
	)

	c.KafkaAudit = audit.NewKafkaAuditLogger(cfg.KafkaBrokers, cfg.KafkaTopic)
	c.AuditLogger = audit.Multi{
		audit.NewLogAuditLogger(log.New(os.Stderr, "audit: ", log.LstdFlags)),
		c.KafkaAudit,
	}

	c.OTPSvc = services.NewOTPService(
		c.NotificationSvc,
		c.UserRepo,
		c.ChallengeStore,
		c.TokenSvc,
		c.AuditLogger,
		services.OTPConfig{
			Length:          cfg.OTPLength,
			TTL:             cfg.OTPTTL,
			DispatchTimeout: cfg.DispatchTimeout,
		},
	)

	c.AuthSvc = services.NewAuthService(c.UserRepo, c.PasswordSvc, c.TokenSvc, c.AuditLogger)
}

func (c *Container) initHTTP() {
	authH := handlers.NewAuthHandlers(c.AuthSvc, c.OTPSvc)
	jwtMW := middleware.NewAuthMW(c.TokenSvc)
	c.Router = httpx.BuildRouter(authH, jwtMW)
}

// Close drains in-flight OTP deliveries, then closes all connections
func (c *Container) Close() error {
	if c.OTPSvc != nil {
		c.OTPSvc.Close()
	}

	var errs []error
	if err := c.KafkaAudit.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka: %w", err))
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := database.Close(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
