package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"ledger-gateway/internal/middleware"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/service"
	"ledger-gateway/internal/utils"
	"ledger-gateway/pkg/response"
)

type QueryController struct {
	queryService *service.QueryService
	validate     *validator.Validate
}

func NewQueryController(queryService *service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
		validate:     validator.New(),
	}
}

// Ask godoc
// @Summary Answer a free-form question
// @Description Resolves a natural language question against the connected source and executes it
// @Tags query
// @Accept json
// @Produce json
// @Param request body model.AskRequest true "Question"
// @Success 200 {object} model.AskResponse
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/ask [post]
func (qc *QueryController) Ask(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			utils.ErrCodeInvalidRequest,
			"Invalid request body: "+err.Error(),
			"",
			correlationID,
		))
		return
	}

	if err := qc.validate.Struct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.ValidationErrorResponse(
			err.Error(),
			correlationID,
		))
		return
	}

	resp := qc.queryService.Ask(c.Request.Context(), &req)
	qc.recordMetrics(resp)

	status := http.StatusOK
	if !resp.Success && resp.Error != nil {
		status = utils.GetErrorStatus(&utils.AppError{Code: resp.Error.Code})
	}
	c.JSON(status, resp)
}

func (qc *QueryController) recordMetrics(resp *model.AskResponse) {
	outcome := "success"
	if !resp.Success {
		outcome = "failure"
	}

	intent := ""
	if resp.Resolved != nil {
		intent = string(resp.Resolved.Intent)
	}
	middleware.RecordQuestion(resp.Metadata.Backend, intent, outcome,
		time.Duration(resp.Metadata.ExecutionTimeMs)*time.Millisecond,
		resp.Metadata.RowCount)

	if resp.Error != nil {
		middleware.RecordQuestionError(resp.Metadata.Backend, resp.Error.Code)
	}
	if resp.Metadata.UsedFallback {
		middleware.RecordFallbackPlan(outcome)
	}
}
