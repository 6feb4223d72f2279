package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger-gateway/internal/middleware"
	"ledger-gateway/internal/service"
	"ledger-gateway/internal/utils"
	"ledger-gateway/pkg/response"
)

type TallyController struct {
	queryService *service.QueryService
}

func NewTallyController(queryService *service.QueryService) *TallyController {
	return &TallyController{queryService: queryService}
}

// tallyOperationRequest selects the aggregated field for scalar operations.
type tallyOperationRequest struct {
	Field string `json:"field,omitempty"`
}

// RunOperation godoc
// @Summary Run a named gateway operation
// @Description Executes one canned Tally operation (companies, ledgers, max, min, sum, avg, count, full)
// @Tags tally
// @Accept json
// @Produce json
// @Param operation path string true "Operation name"
// @Param request body tallyOperationRequest false "Optional field selector"
// @Success 200 {object} response.StandardResponse
// @Failure 400 {object} response.StandardResponse
// @Failure 502 {object} response.StandardResponse
// @Router /api/v1/tally/{operation} [post]
func (tc *TallyController) RunOperation(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	operation := c.Param("operation")

	var req tallyOperationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse(
				utils.ErrCodeInvalidRequest,
				"Invalid request body: "+err.Error(),
				"",
				correlationID,
			))
			return
		}
	}

	answer, err := tc.queryService.RunTallyOperation(c.Request.Context(), operation, req.Field)
	if err != nil {
		middleware.RecordTallyRequest(operation, "failure")
		tc.fail(c, err, correlationID)
		return
	}
	middleware.RecordTallyRequest(operation, "success")

	c.JSON(http.StatusOK, response.SuccessResponse(gin.H{
		"operation": operation,
		"answer":    answer,
	}, correlationID))
}

// Sync godoc
// @Summary Run one incremental sync now
// @Description Fetches the full ledger export and persists rows newer than the stored watermark
// @Tags tally
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Failure 502 {object} response.StandardResponse
// @Router /api/v1/tally/sync [post]
func (tc *TallyController) Sync(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	inserted, err := tc.queryService.SyncNow(c.Request.Context())
	if err != nil {
		middleware.RecordSync("failure", 0)
		tc.fail(c, err, correlationID)
		return
	}

	middleware.RecordSync("success", inserted)
	message := fmt.Sprintf("Inserted %d new records into the database.", inserted)
	if inserted == 0 {
		message = "No new data to insert."
	}
	c.JSON(http.StatusOK, response.SuccessResponse(gin.H{
		"inserted": inserted,
		"message":  message,
	}, correlationID))
}

func (tc *TallyController) fail(c *gin.Context, err error, correlationID string) {
	if appErr, ok := err.(*utils.AppError); ok {
		c.JSON(utils.GetErrorStatus(appErr), response.ErrorResponseFromAppError(appErr, correlationID))
		return
	}
	c.JSON(http.StatusInternalServerError, response.InternalServerErrorResponse(correlationID))
}
