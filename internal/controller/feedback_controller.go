package controller

import (
	"net/http"
	"strconv"

	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type FeedbackController struct {
	feedbackQueryService service.FeedbackQueryService
}

func NewFeedbackController(feedbackQueryService service.FeedbackQueryService) *FeedbackController {
	return &FeedbackController{
		feedbackQueryService: feedbackQueryService,
	}
}

func RegisterFeedbackRoutes(router *gin.Engine, controller *FeedbackController) {
	v1 := router.Group("/api/v1/feedback")
	{
		v1.GET("", controller.GetFeedback)
	}
}

// GetFeedback godoc
// @Summary      Search and filter feedback details
// @Description  Retrieves resolved feedback with its query and answer, filtered by time range, rating, model and user, with free text search over query, answer and comment.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        startTime    query     string  true   "Start time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        endTime      query     string  true   "End time (ISO 8601, YYYY-MM-DD or epoch ms)"
// @Param        query        query     string  false  "Free text search query"
// @Param        ratings      query     string  false  "Comma-separated list of ratings (good,bad,improve)"
// @Param        models       query     string  false  "Comma-separated list of models"
// @Param        users        query     string  false  "Comma-separated list of user names"
// @Param        sortOrder    query     string  false  "Sort order by created_at (default: desc)" Enums(asc, desc)
// @Param        page         query     int     false  "Page number (default: 1)" minimum(1)
// @Param        size         query     int     false  "Number of records per page (default: 50, max: 1000)" minimum(1) maximum(1000)
// @Success      200          {object}  dto.FeedbackSearchResponse "Successfully retrieved feedback"
// @Failure      400          {object}  model.Response "Invalid query parameters"
// @Failure      503          {object}  model.Response "Search backend disabled"
// @Failure      500          {object}  model.Response "Internal server error"
// @Router       /api/v1/feedback [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	startTime, endTime, models, err := parseBaseQueryParams(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", "50"))
	if err != nil || size <= 0 || size > 1000 {
		size = 50
	}

	searchReq := dto.FeedbackSearchRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Query:     ctx.Query("query"),
		Ratings:   splitQueryList(ctx.Query("ratings")),
		Models:    models,
		Users:     splitQueryList(ctx.Query("users")),
		SortOrder: ctx.DefaultQuery("sortOrder", "desc"),
		Page:      page,
		Size:      size,
	}

	result, err := c.feedbackQueryService.SearchFeedback(ctx.Request.Context(), searchReq)
	if err != nil {
		log.Error().Err(err).Msg("Error searching feedback")
		respondQueryError(ctx, err, "Failed to search feedback")
		return
	}

	ctx.JSON(http.StatusOK, result)
}
