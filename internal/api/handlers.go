package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
	"github.com/nerrad567/gray-logic-sensing/internal/model"
)

// Health status values.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// healthResponse is the body of GET /api/v1/health.
type healthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Sensors       int                        `json:"sensors"`
	Entities      int                        `json:"entities"`
	Markers       int                        `json:"markers"`
	Components    map[string]componentHealth `json:"components,omitempty"`
}

// componentHealth is the result of one backing service check.
type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// entityResponse is one sensed entity with its latest values.
type entityResponse struct {
	entity.SensedEntityDescription
	Values  map[string]model.SensedValue `json:"values"`
	Updates uint64                       `json:"updates"`
}

// sensorResponse is one sensor and the entity it observes, if any.
type sensorResponse struct {
	entity.SensorDescription
	SensedEntity string `json:"sensed_entity,omitempty"`
}

// markerResponse is one marker and the entity it identifies, if any.
type markerResponse struct {
	entity.MarkerDescription
	MarkedEntity string `json:"marked_entity,omitempty"`
}

// handleHealth reports registry counts and the state of every backing
// service. Any failing component makes the response 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sensors, entities, markers := s.registry.Counts()
	resp := healthResponse{
		Status:        statusOK,
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Sensors:       sensors,
		Entities:      entities,
		Markers:       markers,
	}

	if len(s.checks) > 0 {
		resp.Components = make(map[string]componentHealth, len(s.checks))
	}
	for name, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.HealthCheck(ctx)
		cancel()

		if err != nil {
			s.logger.Warn("health check failed", "component", name, "error", err)
			resp.Status = statusDegraded
			resp.Components[name] = componentHealth{Status: statusDegraded, Error: err.Error()}
			continue
		}
		resp.Components[name] = componentHealth{Status: statusOK}
	}

	status := http.StatusOK
	if resp.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	kind := entity.Kind(r.URL.Query().Get("kind"))

	out := make([]entityResponse, 0, s.models.Len())
	for _, id := range s.models.IDs() {
		m, _ := s.models.Model(id)
		desc := m.Description()
		if kind != "" && desc.Kind != kind {
			continue
		}
		out = append(out, entityResponse{
			SensedEntityDescription: desc,
			Values:                  m.Snapshot(),
			Updates:                 m.UpdateCount(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": out,
		"count":    len(out),
	})
}

// handleGetEntity serves /api/v1/entities/<id>. Entity ids usually begin
// with a slash, so the remainder of the path is tried with one first.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimSuffix(chi.URLParam(r, "*"), "/")
	if rest == "" {
		s.handleListEntities(w, r)
		return
	}

	m, ok := s.models.Model("/" + rest)
	if !ok {
		m, ok = s.models.Model(rest)
	}
	if !ok {
		writeNotFound(w, "sensed entity not found")
		return
	}

	writeJSON(w, http.StatusOK, entityResponse{
		SensedEntityDescription: m.Description(),
		Values:                  m.Snapshot(),
		Updates:                 m.UpdateCount(),
	})
}

func (s *Server) handleListSensors(w http.ResponseWriter, _ *http.Request) {
	observed := make(map[string]string)
	for _, a := range s.registry.SensorSensedEntityAssociations() {
		observed[a.Sensor.ID] = a.SensedEntity.ID
	}

	sensors := s.registry.Sensors()
	out := make([]sensorResponse, 0, len(sensors))
	for _, d := range sensors {
		out = append(out, sensorResponse{SensorDescription: d, SensedEntity: observed[d.ID]})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sensors": out,
		"count":   len(out),
	})
}

func (s *Server) handleListMarkers(w http.ResponseWriter, _ *http.Request) {
	markers := s.registry.Markers()
	out := make([]markerResponse, 0, len(markers))
	for _, d := range markers {
		resp := markerResponse{MarkerDescription: d}
		if e, ok := s.registry.MarkedEntity(d.ID); ok {
			resp.MarkedEntity = e.ID
		}
		out = append(out, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markers": out,
		"count":   len(out),
	})
}
