package controller

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/service"
)

type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Backend     BackendStatus     `json:"backend"`
	Connections map[string]string `json:"connections"`
}

type BackendStatus struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthController struct {
	kind         model.BackendKind
	db           *sql.DB
	queryService *service.QueryService
}

func NewHealthController(kind model.BackendKind, db *sql.DB, queryService *service.QueryService) *HealthController {
	return &HealthController{
		kind:         kind,
		db:           db,
		queryService: queryService,
	}
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Service:     "ledger-gateway",
		Version:     "1.0.0",
		Backend:     BackendStatus{Kind: string(hc.kind), Status: "ready"},
		Connections: make(map[string]string),
	}

	switch {
	case hc.db != nil:
		if err := hc.db.Ping(); err != nil {
			response.Status = "unhealthy"
			response.Backend.Status = "disconnected"
			response.Backend.Message = "Database ping failed: " + err.Error()
		} else {
			stats := hc.db.Stats()
			response.Backend.Message = "Database connection healthy"
			response.Connections["database_open_connections"] = fmt.Sprintf("%d", stats.OpenConnections)
			response.Connections["database_in_use"] = fmt.Sprintf("%d", stats.InUse)
			response.Connections["database_idle"] = fmt.Sprintf("%d", stats.Idle)
		}
	case hc.kind == model.BackendTabular:
		// No persistent connection to probe; an empty catalog still
		// means degraded resolution.
		if hc.queryService.Catalog().Empty() {
			response.Backend.Status = "degraded"
			response.Backend.Message = "No schema snapshot loaded"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
