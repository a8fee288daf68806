package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func testConfig() Config {
	return Config{
		Environment:    "sandbox",
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		ShortCode:      "174379",
		Passkey:        "test-passkey",
		CallbackURL:    "https://example.com/api/payments/callback/",
	}
}

func TestClient_AccessToken(t *testing.T) {
	var tokenRequests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/v1/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant_type %q", r.URL.Query().Get("grant_type"))
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "consumer-key" || pass != "consumer-secret" {
			t.Errorf("basic auth mismatch: %q %q %v", user, pass, ok)
		}
		tokenRequests++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "token-abc",
			"expires_in":   "3599",
		})
	}))
	defer srv.Close()

	cache := newMemCache()
	cl := NewClient(testConfig(), cache, zap.NewNop()).WithBaseURL(srv.URL)

	tok, err := cl.accessToken(context.Background())
	if err != nil {
		t.Fatalf("accessToken: %v", err)
	}
	if tok != "token-abc" {
		t.Fatalf("token = %q", tok)
	}
	if tokenRequests != 1 {
		t.Fatalf("expected 1 token request, got %d", tokenRequests)
	}

	// TTL укорочен на запас
	if got := cache.ttls[tokenCacheKey]; got != 3599*time.Second-tokenTTLMargin {
		t.Fatalf("cache ttl = %v", got)
	}

	// Повторный вызов берёт токен из кэша
	if _, err := cl.accessToken(context.Background()); err != nil {
		t.Fatalf("accessToken (cached): %v", err)
	}
	if tokenRequests != 1 {
		t.Fatalf("cached token must not hit the gateway, got %d requests", tokenRequests)
	}
}

func TestClient_STKPush(t *testing.T) {
	cfg := testConfig()
	fixedNow := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	wantTimestamp := "20250314093000"
	wantPassword := base64.StdEncoding.EncodeToString([]byte(cfg.ShortCode + cfg.Passkey + wantTimestamp))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-abc", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
				t.Errorf("authorization header = %q", got)
			}
			var req stkPushRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Timestamp != wantTimestamp {
				t.Errorf("timestamp = %q, want %q", req.Timestamp, wantTimestamp)
			}
			if req.Password != wantPassword {
				t.Errorf("password mismatch: %q", req.Password)
			}
			if req.Amount != "286" {
				t.Errorf("amount = %q, want whole units", req.Amount)
			}
			if req.TransactionType != "CustomerPayBillOnline" {
				t.Errorf("transaction type = %q", req.TransactionType)
			}
			if req.PartyA != "254712345678" || req.PhoneNumber != "254712345678" {
				t.Errorf("phone fields: %q %q", req.PartyA, req.PhoneNumber)
			}
			if req.PartyB != cfg.ShortCode || req.BusinessShortCode != cfg.ShortCode {
				t.Errorf("shortcode fields: %q %q", req.PartyB, req.BusinessShortCode)
			}
			if req.CallBackURL != cfg.CallbackURL {
				t.Errorf("callback url = %q", req.CallBackURL)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"MerchantRequestID": "merchant-1",
				"CheckoutRequestID": "checkout-1",
				"ResponseCode":      "0",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cl := NewClient(cfg, newMemCache(), zap.NewNop()).WithBaseURL(srv.URL)
	cl.now = func() time.Time { return fixedNow }

	res, err := cl.STKPush(context.Background(), "254712345678", decimal.RequireFromString("285.50"), "ORDER-1", "Order payment")
	if err != nil {
		t.Fatalf("STKPush: %v", err)
	}
	if res.MerchantRequestID != "merchant-1" || res.CheckoutRequestID != "checkout-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_STKPush_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-abc", "expires_in": "3599"})
		default:
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"errorCode":    "400.002.02",
				"errorMessage": "Bad Request - Invalid PhoneNumber",
			})
		}
	}))
	defer srv.Close()

	cl := NewClient(testConfig(), newMemCache(), zap.NewNop()).WithBaseURL(srv.URL)

	if _, err := cl.STKPush(context.Background(), "bad", decimal.NewFromInt(10), "ORDER-1", "Order payment"); err == nil {
		t.Fatalf("expected rejection error")
	}
}
