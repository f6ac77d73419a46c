package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/synaptiq/synapse-backend/internal/content"
	"github.com/synaptiq/synapse-backend/internal/db"
	"github.com/synaptiq/synapse-backend/internal/handlers"
	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/middleware"
	"github.com/synaptiq/synapse-backend/internal/repos"
	"github.com/synaptiq/synapse-backend/internal/services"
	"github.com/synaptiq/synapse-backend/internal/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	contentRoot := t.TempDir()
	writeLesson := func(parts ...string) {
		body := parts[len(parts)-1]
		full := filepath.Join(append([]string{contentRoot}, parts[:len(parts)-1]...)...)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	writeLesson("tracks", "ml-basics", "01-intro", "what-is-ml.md",
		"---\nid: what-is-ml\ntitle: What is Machine Learning\nduration: 8\n---\n\nMachines that learn from data.\n")
	writeLesson("awakening", "01-foundations", "intro.md",
		"---\nid: awk-intro\ntitle: Foundations\nduration: 6\n---\n\nFirst steps.\n")
	writeLesson("flashcards", "ml-basics.csv",
		"front,back,category\nWhat is a feature?,An input variable,concepts\n")

	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gormDB, log)
	userTokenRepo := repos.NewUserTokenRepo(gormDB, log)
	lessonRepo := repos.NewLessonRepo(gormDB, log)
	characterRepo := repos.NewCharacterRepo(gormDB, log)
	superpowerRepo := repos.NewSuperpowerRepo(gormDB, log)
	activityRepo := repos.NewActivityRepo(gormDB, log)

	resolver := content.NewResolver(content.NewDirStore(contentRoot), log)

	authService := services.NewAuthService(gormDB, log, userRepo, userTokenRepo, "test-secret", time.Hour, 24*time.Hour)
	userService := services.NewUserService(gormDB, log, userRepo)
	lessonService := services.NewLessonService(gormDB, log, lessonRepo)
	progressionService := services.NewProgressionService(gormDB, log, characterRepo, superpowerRepo, activityRepo, nil)

	router := NewRouter(RouterConfig{
		AuthHandler:        handlers.NewAuthHandler(log, authService),
		AuthMiddleware:     middleware.NewAuthMiddleware(log, authService),
		UserHandler:        handlers.NewUserHandler(userService),
		ContentHandler:     handlers.NewContentHandler(log, resolver),
		LessonHandler:      handlers.NewLessonHandler(lessonService),
		ProgressionHandler: handlers.NewProgressionHandler(log, progressionService),
	})
	return router, gormDB
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	}
	return rec, payload
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()

	rec, _ := doJSON(t, router, http.MethodPost, "/api/register", "",
		`{"email":"ada@example.com","password":"hunter22","first_name":"Ada","last_name":"Lovelace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, payload := doJSON(t, router, http.MethodPost, "/api/login", "",
		`{"email":"ada@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	token, _ := payload["access_token"].(string)
	if token == "" {
		t.Fatalf("no access token in login response: %s", rec.Body.String())
	}
	return token
}

func TestHealthcheck(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/healthcheck", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d", rec.Code)
	}
}

func TestProgressionFlow(t *testing.T) {
	router, _ := newTestServer(t)
	token := registerAndLogin(t, router)

	// No token: the protected group rejects.
	rec, _ := doJSON(t, router, http.MethodGet, "/api/progression", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated progression status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/progression", token,
		`{"eventType":"quiz_pass","unitId":"what-is-ml","xpDelta":120,"minutesDelta":8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply event status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, payload := doJSON(t, router, http.MethodGet, "/api/progression", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get progression status = %d", rec.Code)
	}
	character, _ := payload["character"].(map[string]any)
	if character == nil {
		t.Fatalf("expected character in snapshot, body %s", rec.Body.String())
	}
	if xp, _ := character["xp"].(float64); xp != 120 {
		t.Fatalf("expected xp 120, got %v", character["xp"])
	}
	if level, _ := character["level"].(float64); level != 2 {
		t.Fatalf("expected level 2, got %v", character["level"])
	}
	activity, _ := payload["activity"].([]any)
	if len(activity) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(activity))
	}
}

func TestProgressionRejectsMissingEventType(t *testing.T) {
	router, _ := newTestServer(t)
	token := registerAndLogin(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/progression", token, `{"xpDelta":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestContentEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/content/lessons/what-is-ml", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("content lesson status = %d: %s", rec.Code, rec.Body.String())
	}
	if payload["track"] != "ml-basics" {
		t.Fatalf("unexpected track %v", payload["track"])
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/content/lessons/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing lesson status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/content/awakening/lessons/awk-intro", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("legacy track lesson status = %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/content/made-up-track/lessons/awk-intro", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown track status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/content/flashcards/ml-basics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("flashcards status = %d", rec.Code)
	}
	var cards []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil || len(cards) != 1 {
		t.Fatalf("unexpected flashcards body %s", rec.Body.String())
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/content/flashcards/unknown", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("absent flashcards status = %d", rec.Code)
	}
}

func TestManagedLessonEndpoints(t *testing.T) {
	router, gormDB := newTestServer(t)

	lesson := &types.Lesson{
		ID:              uuid.New(),
		Slug:            "intro-to-ml",
		Title:           "Intro to ML",
		Body:            "A short primer.",
		Difficulty:      "beginner",
		Track:           "ml-basics",
		Chapter:         "01-intro",
		DurationMinutes: 10,
		OrderIndex:      1,
	}
	if err := gormDB.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/api/lessons", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list lessons status = %d", rec.Code)
	}
	var lessons []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &lessons); err != nil || len(lessons) != 1 {
		t.Fatalf("unexpected lessons body %s", rec.Body.String())
	}

	rec, payload := doJSON(t, router, http.MethodGet, "/api/lessons/intro-to-ml", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get lesson status = %d", rec.Code)
	}
	if payload["title"] != "Intro to ML" {
		t.Fatalf("unexpected lesson title %v", payload["title"])
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/lessons/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing lesson status = %d", rec.Code)
	}
}

func TestMeAndLogout(t *testing.T) {
	router, _ := newTestServer(t)
	token := registerAndLogin(t, router)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", rec.Code, rec.Body.String())
	}
	user, _ := payload["user"].(map[string]any)
	if user == nil || user["email"] != "ada@example.com" {
		t.Fatalf("unexpected me payload %s", rec.Body.String())
	}
	if _, exposed := user["password"]; exposed {
		t.Fatal("password must not be serialized")
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/logout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
}
