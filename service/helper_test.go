package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/auth"
	"github.com/AkshatJangid787/concert-ticket-booking/config"
	"github.com/AkshatJangid787/concert-ticket-booking/db"
	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/AkshatJangid787/concert-ticket-booking/message"
	"github.com/AkshatJangid787/concert-ticket-booking/service"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serverAddr    = "localhost:18080"
	jwtSecret     = "component-test-jwt-secret"
	paymentSecret = "component-test-payment-secret"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Addr: serverAddr},
		Payment: config.PaymentConfig{KeySecret: paymentSecret},
		JWT:     config.JWTConfig{Secret: jwtSecret},
		Booking: config.BookingConfig{
			HoldWindow:       10 * time.Minute,
			LockTimeout:      3 * time.Second,
			StatementTimeout: 5 * time.Second,
			ReserveTimeout:   8 * time.Second,
			MaxRetries:       5,
			SweepInterval:    time.Second,
			AttemptLimit:     100,
			AttemptWindow:    time.Minute,
		},
	}
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set")
	}

	dbConn, err := sqlx.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbConn.Close()
	})

	require.NoError(t, db.InitialiseDB(context.Background(), dbConn))
	require.NoError(t, message.InitialiseOutbox(dbConn, watermill.NewStdLogger(false, false)))

	return dbConn
}

func startService(t *testing.T, rdb *redis.Client, dbConn *sqlx.DB, notifier *MockNotifier) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc, err := service.New(testConfig(), watermill.NewStdLogger(false, false), rdb, dbConn, notifier)
	require.NoError(t, err)

	go func() {
		if err := svc.Run(ctx); err != nil {
			logrus.WithError(err).Error("Service stopped")
		}
	}()

	waitForHttpServer(t)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get("http://" + serverAddr + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

func newIdentity(role entity.Role) entity.Identity {
	id := shortuuid.New()
	return entity.Identity{
		BuyerID: id,
		Email:   id + "@example.com",
		Role:    role,
	}
}

func sendRequest(t *testing.T, method, path string, identity entity.Identity, body any) (int, []byte) {
	t.Helper()

	var payload io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, "http://"+serverAddr+path, payload)
	require.NoError(t, err)

	req.Header.Set("Correlation-ID", shortuuid.New())
	req.Header.Set("Content-Type", "application/json")

	if !identity.IsAnonymous() {
		token, err := auth.NewResolver(jwtSecret).NewToken(identity, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}
