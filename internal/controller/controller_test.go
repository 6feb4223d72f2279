package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/executor"
	"ledger-gateway/internal/middleware"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/service"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	frame := executor.NewFrame("ledgers",
		[]string{"ledger_name", "parent", "closing_balance"},
		[][]string{
			{"Acme Traders", "Bank Accounts", "1000.50"},
			{"Globex", "Bank Accounts", "2500"},
		})
	holder := metadata.NewSnapshotHolder()
	holder.Swap(frame.Catalog())

	svc := service.NewQueryService(service.Deps{
		Kind:    model.BackendTabular,
		Schema:  holder,
		Tabular: executor.NewTabularExecutor(frame),
	})

	router := gin.New()
	router.Use(middleware.CorrelationID())

	qc := NewQueryController(svc)
	sc := NewSchemaController(svc)
	tc := NewTallyController(svc)
	hc := NewHealthController(model.BackendTabular, nil, svc)

	router.GET("/health", hc.HealthCheck)
	api := router.Group("/api/v1")
	api.POST("/ask", qc.Ask)
	api.GET("/schema", sc.GetSchema)
	api.POST("/schema/refresh", sc.RefreshSchema)
	api.POST("/tally/sync", tc.Sync)
	api.POST("/tally/:operation", tc.RunOperation)

	return router
}

func TestAskEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"question": "total closing_balance"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}

	var resp model.AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if resp.Answer != "Total closing_balance: 3,500.50" {
		t.Errorf("got %q", resp.Answer)
	}
}

func TestAskEndpointRejectsEmptyBody(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestAskEndpointEchoesCorrelationID(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"question": "total closing_balance"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", "test-correlation-42")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "test-correlation-42" {
		t.Errorf("correlation header: got %q", got)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"ledgers"`) {
		t.Errorf("table missing: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"closing_balance"`) {
		t.Errorf("column missing: %s", w.Body.String())
	}
}

func TestSchemaRefreshEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schema/refresh", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestTallyOperationWithoutTallySource(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tally/ledgers", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("got %s", w.Body.String())
	}
}
