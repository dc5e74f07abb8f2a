package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coolescape/coolescape/internal/cache"
	"github.com/coolescape/coolescape/internal/district"
	"github.com/coolescape/coolescape/internal/weather"
)

// stubForecaster returns one 14:00 sample, warmer the farther south the
// latitude, so rankings are deterministic.
type stubForecaster struct{}

func (stubForecaster) Forecast(_ context.Context, lat, _ float64, _ weather.DateRange) (weather.HourlySeries, error) {
	return weather.HourlySeries{
		Time:         []string{"2026-02-10T14:00"},
		TemperatureC: []float64{40.0 - lat/2},
	}, nil
}

// downForecaster simulates the upstream rejecting every request.
type downForecaster struct{}

func (downForecaster) Forecast(context.Context, float64, float64, weather.DateRange) (weather.HourlySeries, error) {
	return weather.HourlySeries{}, &weather.StatusError{Code: 503}
}

const threeDistrictsPayload = `{"districts": [
	{"id": "31", "division_id": "6", "name": "Panchagarh", "bn_name": "পঞ্চগড়", "lat": "26.3411", "long": "88.5541606"},
	{"id": "1", "division_id": "3", "name": "Dhaka", "bn_name": "ঢাকা", "lat": "23.7115253", "long": "90.4111451"},
	{"id": "43", "division_id": "2", "name": "Chattogram", "bn_name": "চট্টগ্রাম", "lat": "22.335109", "long": "91.834073"}
]}`

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWith(t, stubForecaster{}, threeDistrictsPayload)
}

func newTestAppWith(t *testing.T, forecaster weather.Forecaster, payload string) *fiber.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "districts.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write districts file: %v", err)
	}
	registry, err := district.Load(path)
	if err != nil {
		t.Fatalf("load districts: %v", err)
	}

	svc := weather.NewService(forecaster, cache.NewMemory(), registry, 10*time.Minute)

	app := fiber.New()
	RegisterRoutes(app, svc, registry)
	return app
}

func TestCoolestDistrictsValidation(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{
		"/api/v1/coolest-districts?limit=abc",
		"/api/v1/coolest-districts?limit=0",
		"/api/v1/coolest-districts?limit=-3",
		"/api/v1/coolest-districts?sort=sideways",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestCoolestDistrictsRanking(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coolest-districts", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var reports []map[string]interface{}
	if err := json.Unmarshal(body, &reports); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 districts, got %d", len(reports))
	}

	// Northernmost is coolest with the stub's latitude-based temperatures.
	wantOrder := []string{"Panchagarh", "Dhaka", "Chattogram"}
	for i, want := range wantOrder {
		if reports[i]["name"] != want {
			t.Fatalf("position %d: expected %s, got %v", i, want, reports[i]["name"])
		}
	}
	if reports[0]["temperature_unit"] != "Celsius" {
		t.Fatalf("missing temperature unit: %v", reports[0])
	}
}

func TestCoolestDistrictsLimitAndSort(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coolest-districts?limit=2&sort=desc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var reports []map[string]interface{}
	if err := json.Unmarshal(body, &reports); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(reports))
	}
	if reports[0]["name"] != "Chattogram" {
		t.Fatalf("expected warmest first with sort=desc, got %v", reports[0]["name"])
	}
}

func TestCoolestDistrictsDefaultLimit(t *testing.T) {
	// Twelve districts, northernmost (coolest with the stub) first.
	entries := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"id": "%d", "division_id": "3", "name": "District%02d", "bn_name": "জেলা", "lat": "%.1f", "long": "90.0"}`,
			i+1, i+1, 32.0-float64(i)))
	}
	payload := `{"districts": [` + strings.Join(entries, ",") + `]}`
	app := newTestAppWith(t, stubForecaster{}, payload)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coolest-districts", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	var reports []map[string]interface{}
	if err := json.Unmarshal(body, &reports); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reports) != 10 {
		t.Fatalf("expected the default limit of 10 districts, got %d", len(reports))
	}
	if reports[0]["name"] != "District01" || reports[9]["name"] != "District10" {
		t.Fatalf("unexpected truncation: first %v, last %v", reports[0]["name"], reports[9]["name"])
	}
}

func TestTravelRecommendationValidation(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{
		// No parameters at all.
		"/api/v1/travel-recommendation",
		// Missing date.
		"/api/v1/travel-recommendation?friend_district=Dhaka&destination_district=Chattogram",
		// Unparsable date.
		"/api/v1/travel-recommendation?friend_district=Dhaka&destination_district=Chattogram&date=tomorrow",
		// Unknown district name.
		"/api/v1/travel-recommendation?friend_district=Dhaka&destination_district=Atlantis&date=2026-02-10",
		// Incomplete coordinate set.
		"/api/v1/travel-recommendation?friend_lat=23.7&friend_lon=90.4&dest_lat=22.3&date=2026-02-10",
		// Out-of-range latitude.
		"/api/v1/travel-recommendation?friend_lat=123&friend_lon=90.4&dest_lat=22.3&dest_lon=91.8&date=2026-02-10",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestTravelRecommendationByDistrictNames(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/travel-recommendation?friend_district=Dhaka&destination_district=Chattogram&date=2026-02-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var advice map[string]interface{}
	if err := json.Unmarshal(body, &advice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Dhaka and Chattogram are ~0.7°C apart with the stub forecaster.
	if advice["decision"] != weather.DecisionFavorable {
		t.Fatalf("expected favorable decision, got %v", advice["decision"])
	}
	if _, ok := advice["friend_temperature"]; !ok {
		t.Fatalf("missing friend_temperature: %s", body)
	}
	if _, ok := advice["destination_temperature"]; !ok {
		t.Fatalf("missing destination_temperature: %s", body)
	}
}

func TestTravelRecommendationDegradedStillOK(t *testing.T) {
	app := newTestAppWith(t, downForecaster{}, threeDistrictsPayload)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/travel-recommendation?friend_district=Dhaka&destination_district=Chattogram&date=2026-02-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Upstream failures degrade the advice; they are not a server error.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var advice map[string]interface{}
	if err := json.Unmarshal(body, &advice); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if advice["decision"] != weather.DecisionUnavailable {
		t.Fatalf("expected unavailable decision, got %v", advice["decision"])
	}
	for _, side := range []string{"friend", "destination"} {
		sub, ok := advice[side].(map[string]interface{})
		if !ok {
			t.Fatalf("missing %s sub-result: %s", side, body)
		}
		if sub["error"] != "API Error 503" {
			t.Fatalf("%s error not preserved: %s", side, body)
		}
	}
}

func TestTravelRecommendationByCoordinates(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/travel-recommendation?friend_lat=23.7&friend_lon=90.4&dest_lat=22.3&dest_lon=91.8&date=2026-02-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}
