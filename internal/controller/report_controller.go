package controller

import (
	"errors"
	"net/http"
	"time"

	"chat-insight-backend/internal/export"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/service"
	"chat-insight-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

func RegisterReportRoutes(router *gin.Engine, controller *ReportController) {
	v1 := router.Group("/api/v1/reports")
	{
		v1.POST("/run", controller.RunReport)
		v1.GET("/summary", controller.GetLatestSummary)
	}
}

// RunReport godoc
// @Summary      Run the report pipeline
// @Description  Rebuilds the QA pair, feedback and summary reports from the chat database and refreshes the metric, search and cache sinks.
// @Tags         reports
// @Produce      json
// @Param        date   query     string  false  "Report date (YYYY-MM-DD), defaults to today"
// @Success      200    {object}  model.Response{data=model.ReportResult} "Report run finished"
// @Failure      400    {object}  model.Response "Invalid date"
// @Failure      409    {object}  model.Response "A run is already in progress"
// @Failure      500    {object}  model.Response "Report stage failed"
// @Router       /api/v1/reports/run [post]
func (c *ReportController) RunReport(ctx *gin.Context) {
	var runDate time.Time
	if date := ctx.Query("date"); date != "" {
		var err error
		runDate, err = util.ParseDay(date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
			return
		}
	}

	result, err := c.reportService.Run(ctx.Request.Context(), runDate)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			ctx.JSON(http.StatusConflict, model.NewResponse(err.Error(), nil))
			return
		}
		log.Error().Err(err).Msg("Report run failed")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse(err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, model.NewResponse("Report run finished", result))
}

// GetLatestSummary godoc
// @Summary      Get the latest summary
// @Description  Returns the aggregate statistics of the most recent report run, from the cache when available.
// @Tags         reports
// @Produce      json
// @Success      200    {object}  dto.SummaryResponse "Latest summary"
// @Failure      404    {object}  model.Response "No report has been generated yet"
// @Failure      500    {object}  model.Response "Internal server error"
// @Router       /api/v1/reports/summary [get]
func (c *ReportController) GetLatestSummary(ctx *gin.Context) {
	result, err := c.reportService.LatestSummary(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, export.ErrNoReport) {
			ctx.JSON(http.StatusNotFound, model.NewResponse(err.Error(), nil))
			return
		}
		log.Error().Err(err).Msg("Error loading latest summary")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to load latest summary", nil))
		return
	}
	ctx.JSON(http.StatusOK, result)
}
