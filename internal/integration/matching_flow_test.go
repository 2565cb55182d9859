package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"parttime-match/internal/app"
	"parttime-match/internal/config"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User struct {
		ID uuid.UUID `json:"id"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

type idData struct {
	ID uuid.UUID `json:"id"`
}

type matchItem struct {
	SeekerID     uuid.UUID `json:"seeker_id"`
	PostID       uuid.UUID `json:"post_id"`
	OverallScore float64   `json:"overall_score"`
	Status       string    `json:"status"`
	Version      int64     `json:"version"`
}

type matchList struct {
	Items []matchItem `json:"items"`
}

func baseConfig() config.Config {
	return config.Config{
		App: config.AppConfig{AppName: "parttime-match-test", Environment: "test", HTTPPort: "0"},
		Database: config.DatabaseConfig{
			Driver: config.DriverMemory,
		},
		JWT: config.JWTConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: time.Hour,
		},
		Matching: config.MatchingConfig{
			Workers:     2,
			PairTimeout: 2 * time.Second,
			BatchSize:   50,
			SweepSpec:   "@every 1h",
		},
	}
}

func TestIntegration_MatchingFlow_Memory(t *testing.T) {
	runMatchingFlow(t, baseConfig())
}

func TestIntegration_MatchingFlow_Postgres(t *testing.T) {
	cfg := baseConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:     config.DriverPostgres,
		DBHost:     stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_HOST"), os.Getenv("DB_HOST")),
		DBPort:     stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_PORT"), os.Getenv("DB_PORT")),
		DBName:     stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_NAME"), os.Getenv("DB_NAME")),
		DBUser:     stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_USER"), os.Getenv("DB_USER")),
		DBPassword: stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD")),
		DBSSLMode:  stringsOrDefault(os.Getenv("PARTTIME_TEST_DB_SSL_MODE"), stringsOrDefault(os.Getenv("DB_SSL_MODE"), "disable")),
	}
	if cfg.Database.DBHost == "" || cfg.Database.DBPort == "" || cfg.Database.DBName == "" || cfg.Database.DBUser == "" {
		t.Skip("missing test DB env vars: set PARTTIME_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	cfg.Redis.URL = os.Getenv("PARTTIME_TEST_REDIS_URL")

	runMatchingFlow(t, cfg)
}

func runMatchingFlow(t *testing.T, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a, cleanup, err := app.Bootstrap(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = cleanup() }()
	if err := a.StartBackground(ctx); err != nil {
		t.Fatalf("start background: %v", err)
	}
	f := a.Fiber

	waitIdle := func() {
		t.Helper()
		if err := a.Container.Dispatcher.WaitIdle(ctx); err != nil {
			t.Fatalf("dispatcher never idle: %v", err)
		}
	}

	suffix := uuid.NewString()[:8]
	owner := register(t, f, "owner-"+suffix+"@example.com", "owner")
	seeker := register(t, f, "seeker-"+suffix+"@example.com", "seeker")

	var shop idData
	doJSON(t, f, "POST", "/api/v1/shops", owner.AccessToken, map[string]any{"name": "Siam Cafe " + suffix}, fiber.StatusCreated, &shop)

	var post idData
	doJSON(t, f, "POST", "/api/v1/posts", owner.AccessToken, map[string]any{
		"shop_id":         shop.ID,
		"title":           "Weekend barista",
		"category":        "cafe",
		"location":        map[string]float64{"latitude": 13.7460, "longitude": 100.5340},
		"wage":            65,
		"required_days":   []string{"sat", "sun"},
		"required_skills": []string{"Barista"},
	}, fiber.StatusCreated, &post)

	doJSON(t, f, "PUT", "/api/v1/seekers/me", seeker.AccessToken, map[string]any{
		"location":       map[string]float64{"latitude": 13.7563, "longitude": 100.5018},
		"available_days": []string{"saturday"},
		"skills":         []string{"barista", "cashier"},
		"min_wage":       60,
	}, fiber.StatusOK, nil)
	waitIdle()

	var recs matchList
	doJSON(t, f, "GET", "/api/v1/seekers/me/recommendations?limit=10", seeker.AccessToken, nil, fiber.StatusOK, &recs)
	if len(recs.Items) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs.Items))
	}
	rec := recs.Items[0]
	if rec.PostID != post.ID || rec.Status != "pending" || rec.OverallScore <= 0 || rec.OverallScore > 100 {
		t.Fatalf("unexpected recommendation %+v", rec)
	}

	var cands matchList
	doJSON(t, f, "GET", "/api/v1/posts/"+post.ID.String()+"/candidates", owner.AccessToken, nil, fiber.StatusOK, &cands)
	if len(cands.Items) != 1 || cands.Items[0].SeekerID != seeker.User.ID {
		t.Fatalf("unexpected candidates %+v", cands.Items)
	}
	doJSON(t, f, "GET", "/api/v1/posts/"+post.ID.String()+"/candidates", seeker.AccessToken, nil, fiber.StatusForbidden, nil)

	statusPath := "/api/v1/posts/" + post.ID.String() + "/matches/" + seeker.User.ID.String() + "/status"
	doJSON(t, f, "PATCH", statusPath, seeker.AccessToken, map[string]string{"status": "accepted"}, fiber.StatusForbidden, nil)

	var moved matchItem
	doJSON(t, f, "PATCH", statusPath, owner.AccessToken, map[string]string{"status": "interview"}, fiber.StatusOK, &moved)
	if moved.Status != "interview" || moved.Version != rec.Version+1 {
		t.Fatalf("unexpected status move %+v", moved)
	}
	doJSON(t, f, "PATCH", statusPath, owner.AccessToken, map[string]string{"status": "pending"}, fiber.StatusConflict, nil)

	// A rescore keeps the owner's decision.
	doJSON(t, f, "PUT", "/api/v1/seekers/me", seeker.AccessToken, map[string]any{
		"location":       map[string]float64{"latitude": 13.7563, "longitude": 100.5018},
		"available_days": []string{"sat", "sun"},
		"skills":         []string{"barista"},
		"min_wage":       60,
	}, fiber.StatusOK, nil)
	waitIdle()
	doJSON(t, f, "GET", "/api/v1/seekers/me/recommendations", seeker.AccessToken, nil, fiber.StatusOK, &recs)
	if len(recs.Items) != 1 || recs.Items[0].Status != "interview" {
		t.Fatalf("rescore lost status: %+v", recs.Items)
	}

	doJSON(t, f, "POST", "/api/v1/posts/"+post.ID.String()+"/applications", seeker.AccessToken, map[string]string{"message": "hi"}, fiber.StatusCreated, nil)
	doJSON(t, f, "POST", "/api/v1/posts/"+post.ID.String()+"/applications", seeker.AccessToken, nil, fiber.StatusConflict, nil)

	doJSON(t, f, "POST", "/api/v1/posts/"+post.ID.String()+"/close", owner.AccessToken, nil, fiber.StatusOK, nil)
	waitIdle()
	recs = matchList{}
	doJSON(t, f, "GET", "/api/v1/seekers/me/recommendations", seeker.AccessToken, nil, fiber.StatusOK, &recs)
	if len(recs.Items) != 0 {
		t.Fatalf("closed post still recommended: %+v", recs.Items)
	}

	doJSON(t, f, "GET", "/api/v1/seekers/me/recommendations", "", nil, fiber.StatusUnauthorized, nil)
	doJSON(t, f, "GET", "/health", "", nil, fiber.StatusOK, nil)
}

func register(t *testing.T, f *fiber.App, email, role string) authData {
	t.Helper()
	var out authData
	doJSON(t, f, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"role":     role,
	}, fiber.StatusCreated, &out)
	if out.AccessToken == "" || out.User.ID == uuid.Nil {
		t.Fatalf("register %s: empty token or id", email)
	}
	return out
}

func doJSON(t *testing.T, f *fiber.App, method, path, token string, body any, wantStatus int, out any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status=%d want=%d body=%s", method, path, resp.StatusCode, wantStatus, raw)
	}
	if out == nil {
		return
	}

	var env semanticResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("%s %s: decode data: %v", method, path, err)
	}
}

func stringsOrDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
