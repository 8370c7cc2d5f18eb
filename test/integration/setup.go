package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	adminEmail    = "admin@storefront.test"
	adminPassword = "admin-password"
	shippingFee   = 200
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestRedis starts a Redis container for guest carts.
func SetupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opts, err := goredis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	client := goredis.NewClient(opts)

	t.Cleanup(func() {
		_ = client.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// CleanupDB removes all rows except the bootstrapped admin.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_status_history", "order_items", "orders",
		"cart_items", "carts", "product_reviews", "wholesale_accounts",
		"products", "categories",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE email <> $1", adminEmail); err != nil {
		t.Logf("failed to clean users: %v", err)
	}
}

// sentMail is a delivered notification.
type sentMail struct {
	To      string
	Subject string
}

// recordingMailer captures mail instead of sending it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// TestServer is the full HTTP stack over real stores.
type TestServer struct {
	Handler http.Handler
	DB      *TestDB
	Mail    *recordingMailer
}

// SetupTestServer wires the storefront the same way cmd/api does. Guest
// carts are mounted only when client is non-nil.
func SetupTestServer(t *testing.T, testDB *TestDB, client *goredis.Client) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var guestRepo repository.GuestCartRepository
	if client != nil {
		guestRepo = repository.NewGuestCartRepository(client, time.Hour, logger)
	}

	queue := notify.NewMemoryQueue(32, 2, 10*time.Millisecond, logger)
	mail := &recordingMailer{}
	go func() {
		_ = notify.NewDispatcher(queue, mail, logger).Run(ctx)
	}()

	tokens := auth.NewTokenManager("integration-secret", time.Hour)

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	reviewRepo := repository.NewReviewRepository(testDB.Pool, logger)
	wholesaleRepo := repository.NewWholesaleRepository(testDB.Pool, logger)

	cartService := service.NewCartService(cartRepo, guestRepo, productRepo, logger)
	authService := service.NewAuthService(userRepo, cartService, tokens, logger)
	require.NoError(t, authService.EnsureAdmin(ctx, adminEmail, adminPassword))

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Product:  handler.NewProductHandler(service.NewProductService(productRepo, categoryRepo, logger), logger),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, logger), logger),
		Review:   handler.NewReviewHandler(service.NewReviewService(reviewRepo, userRepo, logger), logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Order: handler.NewOrderHandler(service.NewOrderService(
			orderRepo, productRepo, cartRepo, notify.NewNotifier(queue),
			config.PricingConfig{ShippingFee: shippingFee}, logger), logger),
		Wholesale:  handler.NewWholesaleHandler(service.NewWholesaleService(wholesaleRepo, userRepo, productRepo, logger), logger),
		GuestCarts: guestRepo != nil,
	}

	limits := config.RateLimitConfig{AuthPerMinute: 6000, AuthBurst: 1000}

	return &TestServer{
		Handler: router.New(h, tokens, limits, logger),
		DB:      testDB,
		Mail:    mail,
	}
}

// Do sends a JSON request and returns the recorded response.
func (s *TestServer) Do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a response body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
