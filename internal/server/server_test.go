package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkbase/inkbase/internal/audit"
	"github.com/inkbase/inkbase/internal/config"
	"github.com/inkbase/inkbase/internal/dispatch"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/internal/ratelimit"
	"github.com/inkbase/inkbase/internal/repository"
	"github.com/inkbase/inkbase/internal/service"
)

const testPassword = "Sup3r!Secret#Pass"

type testEnv struct {
	router *gin.Engine
	client *redis.Client
	cfg    *config.Config
	flags  *repository.FlagRepository
	tasks  *repository.TaskRepository
	blog   *repository.BlogRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	scheduler := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"messageId": "msg-test"})
	}))
	t.Cleanup(scheduler.Close)

	cfg := &config.Config{
		Port:                 "0",
		AllowedOrigin:        "https://app.example.com",
		JWTSecret:            "test-secret-key-0123456789abcdef-long-enough",
		TokenTTL:             time.Hour,
		AuthCookieName:       "inkbase_session",
		AdminEmails:          []string{"root@example.com"},
		QStashURL:            scheduler.URL,
		QStashToken:          "test-token",
		QStashCurrentSignKey: "current-key",
		QStashNextSignKey:    "next-key",
		CallbackBaseURL:      "http://localhost:8080",
		RateLimitRPS:         1000,
		RateLimitBurst:       1000,
	}

	log := zerolog.Nop()
	auditLogger := audit.NewLogger(log)
	limiter := ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	userRepo := repository.NewUserRepository(client)
	noteRepo := repository.NewNoteRepository(client, log)
	noteTypeRepo := repository.NewNoteTypeRepository(client, noteRepo)
	blogRepo := repository.NewBlogRepository(client, log)
	flagRepo := repository.NewFlagRepository(client)
	taskRepo := repository.NewTaskRepository(client)
	guestbookRepo := repository.NewGuestbookRepository(client)

	require.NoError(t, flagRepo.Initialize(context.Background()))

	authService := service.NewAuthService(cfg, userRepo, limiter, auditLogger)
	dispatcher := dispatch.NewDispatcher(cfg, taskRepo, dispatch.DefaultProcessors(blogRepo, log), log)

	srv := New(Deps{
		Config:      cfg,
		AuthService: authService,
		Notes:       noteRepo,
		NoteTypes:   noteTypeRepo,
		Blog:        blogRepo,
		Flags:       flagRepo,
		Tasks:       taskRepo,
		Guestbook:   guestbookRepo,
		Dispatcher:  dispatcher,
		Limiter:     limiter,
		AuditLogger: auditLogger,
		Log:         log,
	})

	return &testEnv{
		router: srv.Router(),
		client: client,
		cfg:    cfg,
		flags:  flagRepo,
		tasks:  taskRepo,
		blog:   blogRepo,
	}
}

// do performs one request against the router
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Error   string          `json:"error"`
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	env := parseEnvelope(t, w)
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// registerAndLogin creates a user through the API and returns their token
func (e *testEnv) registerAndLogin(t *testing.T, username, email string) (string, *models.User) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeData[*models.User](t, w)

	w = e.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeData[*models.LoginResponse](t, w)

	return resp.Token, user
}
