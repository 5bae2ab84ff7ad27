package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensing/internal/model"
)

// testServer creates a Server over a small registry with one reading applied.
func testServer(t *testing.T, cfg config.APIConfig) *Server {
	t.Helper()
	return testServerWithChecks(t, cfg, nil)
}

// testServerWithChecks is testServer with backing service checks attached.
func testServerWithChecks(t *testing.T, cfg config.APIConfig, checks map[string]HealthChecker) *Server {
	t.Helper()

	reg := entity.NewRegistry()
	steps := []error{
		reg.RegisterSensor(entity.SensorDescription{ID: "/sensornode/n1", Name: "Node 1"}),
		reg.RegisterSensor(entity.SensorDescription{ID: "/sensornode/spare", Name: "Spare"}),
		reg.RegisterSensedEntity(entity.SensedEntityDescription{ID: "/home/livingroom", Name: "Living Room", Kind: entity.KindPhysicalSpace}),
		reg.RegisterSensedEntity(entity.SensedEntityDescription{ID: "/person/p1", Name: "Person", Kind: entity.KindPerson}),
		reg.RegisterMarker(entity.MarkerDescription{ID: "/marker/ble/1", MarkerID: "ble:1"}),
		reg.AssociateSensorWithSensedEntity("/sensornode/n1", "/home/livingroom"),
		reg.AssociateMarkerWithMarkedEntity("/marker/ble/1", "/person/p1"),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building registry: %v", err)
		}
	}

	models := model.NewCollectionFromRegistry(reg)
	m, _ := models.Model("/home/livingroom")
	m.Update(model.SensedValue{SensorID: "/sensornode/n1", Name: "temperature", Type: "temperature", Value: 21.5, Timestamp: 1000})

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Models:   models,
		Version:  "test",

		HealthChecks: checks,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger should fail")
	}
	log := logging.Default()
	if _, err := New(Deps{Logger: log}); err == nil {
		t.Error("New() without registry should fail")
	}
	if _, err := New(Deps{Logger: log, Registry: entity.NewRegistry()}); err == nil {
		t.Error("New() without models should fail")
	}
}

func TestHealth(t *testing.T) {
	router := testServer(t, config.APIConfig{}).buildRouter()

	rec := get(t, router, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" || body.Sensors != 2 || body.Entities != 2 || body.Markers != 1 {
		t.Errorf("health = %+v", body)
	}
}

// stubChecker is a HealthChecker with a fixed result.
type stubChecker struct {
	err   error
	calls int
}

func (c *stubChecker) HealthCheck(ctx context.Context) error {
	c.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("health check called without a deadline")
	}
	return c.err
}

func TestHealth_Components(t *testing.T) {
	broker := &stubChecker{}
	store := &stubChecker{}
	router := testServerWithChecks(t, config.APIConfig{}, map[string]HealthChecker{
		"mqtt":     broker,
		"docstore": store,
		"influxdb": nil,
	}).buildRouter()

	rec := get(t, router, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" || len(body.Components) != 2 {
		t.Fatalf("health = %+v, want ok with mqtt and docstore", body)
	}
	if body.Components["mqtt"].Status != "ok" || body.Components["docstore"].Status != "ok" {
		t.Errorf("components = %+v", body.Components)
	}

	broker.err = errors.New("not connected")
	rec = get(t, router, "/api/v1/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body = healthResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded", body.Status)
	}
	if got := body.Components["mqtt"]; got.Status != "degraded" || got.Error != "not connected" {
		t.Errorf("mqtt component = %+v", got)
	}
	if got := body.Components["docstore"]; got.Status != "ok" {
		t.Errorf("docstore component = %+v, want ok", got)
	}
	if broker.calls != 2 || store.calls != 2 {
		t.Errorf("checks called %d, %d times; want 2 each", broker.calls, store.calls)
	}
}

func TestEntities_UnencodableValue(t *testing.T) {
	srv := testServer(t, config.APIConfig{})
	m, _ := srv.models.Model("/home/livingroom")
	m.Update(model.SensedValue{SensorID: "/sensornode/n1", Name: "humidity", Type: "humidity", Value: math.NaN(), Timestamp: 2000})

	rec := get(t, srv.buildRouter(), "/api/v1/entities")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body Error
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	if body.Code != ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, ErrCodeInternal)
	}
}

func TestEntities(t *testing.T) {
	router := testServer(t, config.APIConfig{}).buildRouter()

	t.Run("list", func(t *testing.T) {
		rec := get(t, router, "/api/v1/entities")
		var body struct {
			Entities []entityResponse `json:"entities"`
			Count    int              `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Count != 2 || len(body.Entities) != 2 {
			t.Fatalf("entities = %+v", body)
		}
		if body.Entities[0].ID != "/home/livingroom" || body.Entities[0].Values["temperature"].Value != 21.5 {
			t.Errorf("first entity = %+v", body.Entities[0])
		}
	})

	t.Run("filter by kind", func(t *testing.T) {
		rec := get(t, router, "/api/v1/entities?kind=person")
		if !strings.Contains(rec.Body.String(), `"count":1`) || !strings.Contains(rec.Body.String(), "/person/p1") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("get by id with slashes", func(t *testing.T) {
		rec := get(t, router, "/api/v1/entities/home/livingroom")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body entityResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Name != "Living Room" || body.Updates != 1 {
			t.Errorf("entity = %+v", body)
		}
	})

	t.Run("trailing slash lists", func(t *testing.T) {
		for _, path := range []string{"/api/v1/entities/", "/api/v1/entities//"} {
			rec := get(t, router, path)
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":2`) {
				t.Errorf("GET %s = %d %s, want the listing", path, rec.Code, rec.Body.String())
			}
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := get(t, router, "/api/v1/entities/home/attic")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRegistryListings(t *testing.T) {
	router := testServer(t, config.APIConfig{}).buildRouter()

	sensors := get(t, router, "/api/v1/sensors").Body.String()
	if !strings.Contains(sensors, `"sensed_entity":"/home/livingroom"`) {
		t.Errorf("sensors body missing association: %s", sensors)
	}

	markers := get(t, router, "/api/v1/markers").Body.String()
	if !strings.Contains(markers, `"marked_entity":"/person/p1"`) {
		t.Errorf("markers body missing association: %s", markers)
	}
}

func TestMetricsAndNotFound(t *testing.T) {
	router := testServer(t, config.APIConfig{}).buildRouter()

	if rec := get(t, router, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", rec.Code)
	}
	if rec := get(t, router, "/api/v1/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	router := testServer(t, config.APIConfig{RateLimit: 2}).buildRouter()

	var last int
	for i := 0; i < 3; i++ {
		last = get(t, router, "/api/v1/health").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestStartClose(t *testing.T) {
	srv := testServer(t, config.APIConfig{Listen: "127.0.0.1:0", ReadTimeout: 5, WriteTimeout: 5})

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close() //nolint:errcheck // Test cleanup
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var unstarted Server
	if err := unstarted.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
}
