package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/created", func(c fiber.Ctx) error { return Created(c, map[string]string{"id": "x"}) })
	app.Get("/degraded", func(c fiber.Ctx) error { return Error(c, fiber.StatusServiceUnavailable, "", nil) })
	app.Get("/bogus", func(c fiber.Ctx) error { return Success(c, 42, "", nil) })

	cases := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/created", fiber.StatusCreated, MessageCreated},
		{"/degraded", fiber.StatusServiceUnavailable, MessageDegraded},
		{"/bogus", fiber.StatusInternalServerError, MessageInternalServerError},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		if err != nil {
			t.Fatalf("%s: %v", tc.path, err)
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		var env SemanticResponse
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if resp.StatusCode != tc.wantStatus || env.Status != tc.wantStatus || env.Message != tc.wantMsg {
			t.Fatalf("%s: got %d %+v", tc.path, resp.StatusCode, env)
		}
	}
}
