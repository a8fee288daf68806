package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ecommerce-backend/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	tokenCacheKey = "mpesa:access_token"
	// Токен живёт ~3600 секунд, запас на сетевые задержки
	tokenTTLMargin = 60 * time.Second
)

// TokenCache — кэш access-токена шлюза, промах обозначается ошибкой
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Config struct {
	Environment    string // sandbox | production
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
}

type Client struct {
	cfg   Config
	base  string // переопределение базового адреса, используется в тестах
	http  *http.Client
	cache TokenCache
	log   *zap.Logger
	now   func() time.Time
}

var _ service.PaymentGateway = (*Client)(nil)

func NewClient(cfg Config, cache TokenCache, log *zap.Logger) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 30 * time.Second},
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func (c *Client) baseURL() string {
	if c.base != "" {
		return c.base
	}
	if c.cfg.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// accessToken возвращает закэшированный токен либо запрашивает новый по
// client credentials
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cache != nil {
		if tok, err := c.cache.Get(ctx, tokenCacheKey); err == nil && tok != "" {
			return tok, nil
		}
	}

	url := c.baseURL() + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("mpesa token request: status %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("mpesa token decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("mpesa token response without access_token")
	}

	if c.cache != nil {
		ttl := time.Hour
		if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
		if ttl > tokenTTLMargin {
			ttl -= tokenTTLMargin
		}
		if err := c.cache.Set(ctx, tokenCacheKey, tr.AccessToken, ttl); err != nil {
			c.log.Warn("не удалось закэшировать токен mpesa", zap.Error(err))
		}
	}

	return tr.AccessToken, nil
}

// Пароль STK push: base64(shortcode + passkey + timestamp)
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

func (c *Client) STKPush(ctx context.Context, phoneNumber string, amount decimal.Decimal, accountReference, description string) (*service.STKPushResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	body := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		// Шлюз принимает только целые шиллинги
		Amount:           amount.Round(0).String(),
		PartyA:           phoneNumber,
		PartyB:           c.cfg.ShortCode,
		PhoneNumber:      phoneNumber,
		CallBackURL:      c.cfg.CallbackURL,
		AccountReference: accountReference,
		TransactionDesc:  description,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := c.baseURL() + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push: %w", err)
	}
	defer resp.Body.Close()

	var sr stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("mpesa stk push decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK || sr.ResponseCode != "0" {
		if sr.ErrorMessage != "" {
			return nil, fmt.Errorf("mpesa stk push rejected: %s (%s)", sr.ErrorMessage, sr.ErrorCode)
		}
		return nil, fmt.Errorf("mpesa stk push rejected: status %d, code %q: %s", resp.StatusCode, sr.ResponseCode, sr.ResponseDescription)
	}

	c.log.Info("STK push принят шлюзом",
		zap.String("merchant_request_id", sr.MerchantRequestID),
		zap.String("checkout_request_id", sr.CheckoutRequestID),
	)

	return &service.STKPushResult{
		MerchantRequestID: sr.MerchantRequestID,
		CheckoutRequestID: sr.CheckoutRequestID,
	}, nil
}

// WithBaseURL подменяет базовый адрес, используется в тестах
func (c *Client) WithBaseURL(base string) *Client {
	cl := *c
	cl.base = base
	return &cl
}
