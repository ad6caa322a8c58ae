package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authdomain "github.com/stylorenlabs/styloren/internal/auth/domain"
	authrepo "github.com/stylorenlabs/styloren/internal/auth/repository"
	authservice "github.com/stylorenlabs/styloren/internal/auth/service"
	"github.com/stylorenlabs/styloren/internal/config"
	creditdomain "github.com/stylorenlabs/styloren/internal/credit/domain"
	creditrepo "github.com/stylorenlabs/styloren/internal/credit/repository"
	creditservice "github.com/stylorenlabs/styloren/internal/credit/service"
	profiledomain "github.com/stylorenlabs/styloren/internal/profile/domain"
	profilerepo "github.com/stylorenlabs/styloren/internal/profile/repository"
	"github.com/stylorenlabs/styloren/internal/ratelimit"
	scandomain "github.com/stylorenlabs/styloren/internal/scanhistory/domain"
	scanrepo "github.com/stylorenlabs/styloren/internal/scanhistory/repository"
	scanservice "github.com/stylorenlabs/styloren/internal/scanhistory/service"
	"github.com/stylorenlabs/styloren/internal/server"
	stylistservice "github.com/stylorenlabs/styloren/internal/stylist/service"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now(ctx context.Context) time.Time { return c.t }

type fakeGenerator struct {
	out string
	err error
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt string, parts ...genai.Part) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) PutImage(ctx context.Context, userID snowflake.ID, mimeType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%d.%s", userID.String(), len(s.objects), mimeType)
	s.objects[key] = data
	return key, nil
}

func (s *fakeStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type env struct {
	router *gin.Engine
	db     *gorm.DB
	gen    *fakeGenerator
	store  *fakeStore
	cfg    *config.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.PasswordResetCode{},
		&creditdomain.Batch{},
		&profiledomain.Profile{},
		&scandomain.Scan{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	log := zap.NewNop()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTL:        7 * 24 * time.Hour,
			OTPTTL:          10 * time.Minute,
			OTPMaxAttempts:  5,
			Argon2Memory:    8 * 1024,
			Argon2Time:      1,
			Argon2Threads:   1,
			Argon2KeyLength: 32,
		},
		Stylist:   config.StylistConfig{Model: "gemini-2.5-flash", MaxImageBytes: 10 * 1024 * 1024},
		Credits:   config.CreditsConfig{CacheTTL: 2 * time.Minute},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	profileRepo := profilerepo.Provide()
	limiter := ratelimit.NewService(ratelimit.ServiceParam{Log: log, Config: cfg})

	creditSvc := creditservice.NewService(creditservice.ServiceParam{
		DB: db, Log: log, Clock: clk, Node: node, Config: cfg,
		Repo: creditrepo.Provide(), ProfileRepo: profileRepo,
	})

	sender := nopSender{}
	authSvc := authservice.NewService(authservice.ServiceParam{
		DB: db, Log: log, Clock: clk, Node: node, Config: cfg,
		Repo: authrepo.Provide(), ProfileRepo: profileRepo,
		Limiter: limiter, Sender: sender,
	})

	gen := &fakeGenerator{out: "**Final Verdict** great look"}
	stylistSvc, err := stylistservice.NewService(stylistservice.ServiceParam{
		Log: log, Config: cfg, Generator: gen,
	})
	require.NoError(t, err)

	store := newFakeStore()
	scanSvc := scanservice.NewService(scanservice.ServiceParam{
		DB: db, Log: log, Clock: clk, Node: node,
		Repo: scanrepo.Provide(), ProfileRepo: profileRepo, Store: store,
	})

	srv := server.New(server.ServerParam{
		DB: db, Log: log, Clock: clk, Config: cfg,
		AuthSvc: authSvc, CreditSvc: creditSvc, StylistSvc: stylistSvc,
		ScanSvc: scanSvc, ProfileRepo: profileRepo, Limiter: limiter,
	})

	return &env{router: srv.Router(), db: db, gen: gen, store: store, cfg: cfg}
}

type nopSender struct{}

func (nopSender) SendResetCode(ctx context.Context, email, code string) error { return nil }

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *env) signup(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.NotEmpty(t, out.Data.Token)
	return out.Data.Token
}

func (e *env) purchase(t *testing.T, token, planID string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/v1/credits/purchase", token, gin.H{"plan_id": planID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func dataURL() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image"))
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/v1/credits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = e.do(t, http.MethodGet, "/v1/credits", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreditLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")

	// Fresh accounts start with zero credits and are not expired.
	resp := e.do(t, http.MethodGet, "/v1/credits", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var state struct {
		Data struct {
			Credits struct {
				CreditsRemaining int  `json:"credits_remaining"`
				IsExpired        bool `json:"is_expired"`
			} `json:"credits"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Zero(t, state.Data.Credits.CreditsRemaining)
	assert.False(t, state.Data.Credits.IsExpired)

	// Analyze without credits hits the paywall.
	resp = e.do(t, http.MethodPost, "/v1/analyze", token, gin.H{"image_base64": dataURL()})
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)
	assert.Contains(t, resp.Body.String(), "no_credits")

	e.purchase(t, token, "quick_try")

	resp = e.do(t, http.MethodPost, "/v1/analyze", token, gin.H{"image_base64": dataURL()})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Final Verdict")

	// One credit was debited.
	resp = e.do(t, http.MethodGet, "/v1/credits", token, nil)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Equal(t, 9, state.Data.Credits.CreditsRemaining)
}

func TestPurchaseUnknownPlan(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")

	resp := e.do(t, http.MethodPost, "/v1/credits/purchase", token, gin.H{"plan_id": "mega_deal"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "plan_not_found")
}

func TestListPlans(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")

	resp := e.do(t, http.MethodGet, "/v1/credits/plans", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "quick_try")
	assert.Contains(t, resp.Body.String(), "monthly_value")
	assert.Contains(t, resp.Body.String(), "quarterly_saver")
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")
	e.purchase(t, token, "quick_try")

	resp := e.do(t, http.MethodPost, "/v1/analyze", token, gin.H{"image_base64": dataURL()})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodGet, "/v1/history", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page struct {
		Data struct {
			Scans []struct {
				ID             string `json:"id"`
				AnalysisText   string `json:"analysis_text"`
				SignedImageURL string `json:"signed_image_url"`
			} `json:"scans"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Data.Scans, 1)
	assert.Contains(t, page.Data.Scans[0].AnalysisText, "Final Verdict")
	assert.Contains(t, page.Data.Scans[0].SignedImageURL, "https://signed.example/")

	// Delete it again.
	resp = e.do(t, http.MethodDelete, "/v1/history/"+page.Data.Scans[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodDelete, "/v1/history/"+page.Data.Scans[0].ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAnalyzeSkipsHistoryWhenOff(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")
	e.purchase(t, token, "quick_try")

	resp := e.do(t, http.MethodPatch, "/v1/profile", token, gin.H{"save_scan_history": false})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodPost, "/v1/analyze", token, gin.H{"image_base64": dataURL()})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodGet, "/v1/history", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"scans":[]`)
}

func TestUpstreamErrorsDoNotDebit(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")
	e.purchase(t, token, "quick_try")

	e.gen.err = &googleapi.Error{Code: 429}
	resp := e.do(t, http.MethodPost, "/v1/chat", token, gin.H{"message": "help me style this"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	e.gen.err = &googleapi.Error{Code: 402}
	resp = e.do(t, http.MethodPost, "/v1/chat", token, gin.H{"message": "help me style this"})
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)
	assert.Contains(t, resp.Body.String(), "upstream_credits")

	// No credit was consumed by the failed calls.
	e.gen.err = nil
	resp = e.do(t, http.MethodGet, "/v1/credits", token, nil)
	var state struct {
		Data struct {
			Credits struct {
				CreditsRemaining int `json:"credits_remaining"`
			} `json:"credits"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Equal(t, 10, state.Data.Credits.CreditsRemaining)
}

func TestCompareValidation(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")
	e.purchase(t, token, "quick_try")

	resp := e.do(t, http.MethodPost, "/v1/compare", token, gin.H{"images": []string{dataURL()}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "too_few_images")

	resp = e.do(t, http.MethodPost, "/v1/compare", token, gin.H{
		"images":   []string{dataURL(), dataURL()},
		"occasion": "a beach wedding",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")

	resp := e.do(t, http.MethodGet, "/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"save_scan_history":true`)

	resp = e.do(t, http.MethodPatch, "/v1/profile", token, gin.H{
		"display_name":      "Priya",
		"save_scan_history": false,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"display_name":"Priya"`)
	assert.Contains(t, resp.Body.String(), `"save_scan_history":false`)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "ok")
}

func TestPasswordResetGenericResponse(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/v1/auth/password-reset/request", "", gin.H{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "If this email is registered")
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "go_goroutines")
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice@example.com")
	e.purchase(t, token, "quick_try")

	resp := e.do(t, http.MethodPost, "/v1/analyze", token, gin.H{"image_base64": dataURL()})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = e.do(t, http.MethodDelete, "/v1/account", token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Stored objects, batches, and the user row are gone.
	e.store.mu.Lock()
	remaining := len(e.store.objects)
	e.store.mu.Unlock()
	assert.Zero(t, remaining)

	var batches int64
	require.NoError(t, e.db.Table("credit_batches").Count(&batches).Error)
	assert.Zero(t, batches)

	var users int64
	require.NoError(t, e.db.Table("users").Count(&users).Error)
	assert.Zero(t, users)

	// The email is free to sign up again.
	e.signup(t, "alice@example.com")
}
