package handler

import (
	"net/http"

	"clearance/internal/middleware"
	"clearance/internal/model"
	"clearance/internal/service"
	"clearance/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService service.StatisticsService
}

func NewStatisticsHandler(statsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/statistics")
	group.Use(middleware.RequireRole(model.RoleProgramChair, model.RoleAdmin))
	{
		group.GET("/clearance", h.GetClearanceStatistics)
	}
}

// GetClearanceStatistics aggregates the term's clearance progress for the chair dashboard
// @Summary      Get clearance statistics
// @Description  Counts of active students, ready-for-unlock and unlocked permits, recent unlocks and a per-course breakdown
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        school_year  query     string  true  "School year"
// @Param        semester     query     string  true  "Semester"
// @Success      200          {object}  response.Response{data=model.ClearanceStatisticsResponse}
// @Failure      422          {object}  response.Response
// @Router       /api/statistics/clearance [get]
func (h *StatisticsHandler) GetClearanceStatistics(c *gin.Context) {
	stats, err := h.statsService.GetProgramChairStatistics(c.Request.Context(), c.Query("school_year"), c.Query("semester"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
