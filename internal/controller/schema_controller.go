package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/middleware"
	"ledger-gateway/internal/service"
	"ledger-gateway/internal/utils"
	"ledger-gateway/pkg/response"
)

type SchemaController struct {
	queryService *service.QueryService
}

func NewSchemaController(queryService *service.QueryService) *SchemaController {
	return &SchemaController{queryService: queryService}
}

// schemaView is the JSON shape of the live catalog snapshot.
type schemaView struct {
	Tables []*metadata.TableSchema `json:"tables"`
}

// GetSchema godoc
// @Summary Get the current schema snapshot
// @Description Returns every table and column of the live catalog
// @Tags schema
// @Produce json
// @Success 200 {object} response.StandardResponse{data=schemaView}
// @Router /api/v1/schema [get]
func (sc *SchemaController) GetSchema(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	catalog := sc.queryService.Catalog()
	if catalog.Empty() {
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse(
			utils.ErrCodeSchemaUnavailable,
			"No schema information is available",
			"The gateway is running in degraded mode; refresh the schema once the source is reachable",
			correlationID,
		))
		return
	}

	view := schemaView{}
	for _, name := range catalog.Tables() {
		if table, ok := catalog.Table(name); ok {
			view.Tables = append(view.Tables, table)
		}
	}
	c.JSON(http.StatusOK, response.SuccessResponse(view, correlationID))
}

// RefreshSchema godoc
// @Summary Re-introspect the source
// @Description Discovers the schema again and swaps the snapshot wholesale
// @Tags schema
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Failure 502 {object} response.StandardResponse
// @Router /api/v1/schema/refresh [post]
func (sc *SchemaController) RefreshSchema(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	if err := sc.queryService.RefreshSchema(c.Request.Context()); err != nil {
		// The swap already happened; the gateway now runs degraded.
		c.JSON(http.StatusBadGateway, response.ErrorResponse(
			utils.ErrCodeSchemaUnavailable,
			"Schema refresh failed; running with an empty snapshot",
			err.Error(),
			correlationID,
		))
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse(
		"Schema refreshed",
		correlationID,
	))
}
