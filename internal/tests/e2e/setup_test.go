package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/config"
	httpx "github.com/you/rakshasetu/internal/http"
	"github.com/you/rakshasetu/internal/http/handlers"
	"github.com/you/rakshasetu/internal/http/middleware"
	"github.com/you/rakshasetu/internal/infrastructure/audit"
	"github.com/you/rakshasetu/internal/infrastructure/auth"
	"github.com/you/rakshasetu/internal/infrastructure/database"
	"github.com/you/rakshasetu/internal/infrastructure/repositories"
	"github.com/you/rakshasetu/internal/mocks"
	"github.com/you/rakshasetu/internal/services"
	testconfig "github.com/you/rakshasetu/internal/tests/config"
)

var codePattern = regexp.MustCompile(`Your OTP is: (\d+)\.`)

// Outbox captures delivered OTP messages so tests can read the code
type Outbox struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
}

func newOutbox() *Outbox {
	return &Outbox{messages: make(map[string][]domain.Message)}
}

// Send implements domain.NotificationService
func (o *Outbox) Send(ctx context.Context, to string, msg domain.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[to] = append(o.messages[to], msg)
	return nil
}

// Count returns how many messages were delivered to
func (o *Outbox) Count(to string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages[to])
}

// LastCode returns the code in the latest message delivered to
func (o *Outbox) LastCode(t *testing.T, to string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()

	msgs := o.messages[to]
	if len(msgs) == 0 {
		t.Fatalf("no OTP delivered to %s", to)
	}
	m := codePattern.FindStringSubmatch(msgs[len(msgs)-1].Body)
	if m == nil {
		t.Fatalf("no code in message body %q", msgs[len(msgs)-1].Body)
	}
	return m[1]
}

// Clock is a settable time source shared by the OTP service and stores
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// TestServer is the fully wired service behind an httptest.Server
type TestServer struct {
	Server    *httptest.Server
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Miniredis *miniredis.Miniredis
	Outbox    *Outbox
	Audit     *mocks.MockAuditLogger
	Clock     *Clock
	OTPSvc    *services.OTPServiceImpl
	Client    *http.Client
}

var emailSeq atomic.Int64

func generateTestEmail() string {
	return fmt.Sprintf("e2e-%d-%d@example.com", time.Now().UnixNano(), emailSeq.Add(1))
}

// NewTestServer wires repositories, services and router over sqlite and the
// selected challenge store.
func NewTestServer(t *testing.T, store string) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testconfig.LoadTestConfig(t, store)
	ts := &TestServer{
		Config: cfg,
		Outbox: newOutbox(),
		Audit:  mocks.NewMockAuditLogger(),
		Clock:  &Clock{t: time.Now()},
		Client: &http.Client{Timeout: 10 * time.Second},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	ts.DB = db

	var challenges domain.ChallengeStore
	switch store {
	case config.StoreRedis:
		ts.Miniredis = miniredis.RunT(t)
		ts.Redis = redis.NewClient(&redis.Options{Addr: ts.Miniredis.Addr()})
		challenges = repositories.NewRedisChallengeStore(ts.Redis, cfg.ChallengeRetention).WithClock(ts.Clock.Now)
	default:
		challenges = repositories.NewMemoryChallengeStore(cfg.ChallengeRetention).WithClock(ts.Clock.Now)
	}

	userRepo := repositories.NewUserRepository(db)
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	auditLogger := audit.Multi{ts.Audit}

	ts.OTPSvc = services.NewOTPService(ts.Outbox, userRepo, challenges, tokenSvc, auditLogger,
		services.OTPConfig{Length: cfg.OTPLength, TTL: cfg.OTPTTL, DispatchTimeout: cfg.DispatchTimeout},
		services.WithOTPClock(ts.Clock.Now),
	)
	authSvc := services.NewAuthService(userRepo, auth.NewPasswordService(cfg.BcryptCost), tokenSvc, auditLogger)

	router := httpx.BuildRouter(handlers.NewAuthHandlers(authSvc, ts.OTPSvc), middleware.NewAuthMW(tokenSvc))
	ts.Server = httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Server.Close()
		ts.OTPSvc.Close()
		if ts.Redis != nil {
			ts.Redis.Close()
		}
		_ = database.Close(db)
	})
	return ts
}

// Response is a decoded JSON envelope
type Response struct {
	Status int
	Data   map[string]interface{}
	Error  string
}

func (ts *TestServer) do(t *testing.T, method, path, bearer string, body interface{}) Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ts.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data  map[string]interface{} `json:"data"`
		Error string                 `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return Response{Status: resp.StatusCode, Data: envelope.Data, Error: envelope.Error}
}

// Post sends a JSON POST
func (ts *TestServer) Post(t *testing.T, path string, body interface{}) Response {
	t.Helper()
	return ts.do(t, http.MethodPost, path, "", body)
}

// Get sends a GET with an optional bearer token
func (ts *TestServer) Get(t *testing.T, path, bearer string) Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, bearer, nil)
}

// Signup registers a user and returns the session token
func (ts *TestServer) Signup(t *testing.T, email, password string) string {
	t.Helper()
	resp := ts.Post(t, "/auth/signup", map[string]string{
		"email":    email,
		"name":     "E2E User",
		"password": password,
		"phone":    "+919800000000",
		"address":  "Pune",
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", resp.Status, resp.Error)
	}
	return resp.Data["token"].(string)
}

// IssueOTP requests a challenge and returns the delivered code
func (ts *TestServer) IssueOTP(t *testing.T, email string) string {
	t.Helper()
	before := ts.Outbox.Count(email)
	resp := ts.Post(t, "/auth/otp/issue", map[string]string{"email": email})
	if resp.Status != http.StatusOK {
		t.Fatalf("otp issue failed: %d %s", resp.Status, resp.Error)
	}
	// delivery is asynchronous
	deadline := time.Now().Add(2 * time.Second)
	for ts.Outbox.Count(email) == before {
		if time.Now().After(deadline) {
			t.Fatalf("OTP for %s was never delivered", email)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return ts.Outbox.LastCode(t, email)
}

// forEachStore runs fn against both challenge store implementations
func forEachStore(t *testing.T, fn func(t *testing.T, ts *TestServer)) {
	for _, store := range []string{config.StoreMemory, config.StoreRedis} {
		t.Run(store, func(t *testing.T) {
			fn(t, NewTestServer(t, store))
		})
	}
}
