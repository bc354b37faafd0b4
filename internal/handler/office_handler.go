package handler

import (
	"net/http"

	"clearance/internal/middleware"
	"clearance/internal/model"
	"clearance/internal/service"
	"clearance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OfficeHandler struct {
	officeService service.OfficeService
}

func NewOfficeHandler(officeService service.OfficeService) *OfficeHandler {
	return &OfficeHandler{officeService: officeService}
}

func (h *OfficeHandler) RegisterRoutes(router *gin.RouterGroup) {
	offices := router.Group("/api/offices")
	offices.Use(middleware.RequireRole(model.RoleStudent, model.RoleStaff, model.RoleProgramChair, model.RoleAdmin))
	{
		offices.GET("", h.List)
		offices.GET("/:id", h.GetByID)
	}

	admin := router.Group("/api/offices")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}

// List returns the office catalog, optionally scoped to one dean
// @Summary      List offices
// @Tags         offices
// @Security     BearerAuth
// @Produce      json
// @Param        dean  query     string  false  "Filter by dean code"
// @Success      200   {object}  response.Response{data=[]service.OfficeResponse}
// @Router       /api/offices [get]
func (h *OfficeHandler) List(c *gin.Context) {
	var (
		offices []service.OfficeResponse
		err     error
	)
	if deanCode := c.Query("dean"); deanCode != "" {
		offices, err = h.officeService.ListByDean(c.Request.Context(), deanCode)
	} else {
		offices, err = h.officeService.List(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, offices))
}

// GetByID fetches one office
// @Summary      Get office by ID
// @Tags         offices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Office ID"
// @Success      200  {object}  response.Response{data=service.OfficeResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/offices/{id} [get]
func (h *OfficeHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid office ID"))
		return
	}

	office, err := h.officeService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, office))
}

// Create adds a clearance-issuing office
// @Summary      Create office
// @Description  Creates an office. DEAN_OFFICE and SSB categories require a dean code.
// @Tags         offices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOfficeRequest  true  "Office Payload"
// @Success      201      {object}  response.Response{data=service.OfficeResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/offices [post]
func (h *OfficeHandler) Create(c *gin.Context) {
	var req service.CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	adminID, _ := middleware.UserID(c)

	office, err := h.officeService.Create(c.Request.Context(), req, adminID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, office))
}

// Update renames or redescribes an office
// @Summary      Update office
// @Tags         offices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Office ID"
// @Param        payload  body      service.UpdateOfficeRequest  true  "Office Payload"
// @Success      200      {object}  response.Response{data=service.OfficeResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/offices/{id} [put]
func (h *OfficeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid office ID"))
		return
	}

	var req service.UpdateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	adminID, _ := middleware.UserID(c)

	office, err := h.officeService.Update(c.Request.Context(), id, req, adminID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, office))
}

// Delete removes an office from the catalog
// @Summary      Delete office
// @Tags         offices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Office ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/offices/{id} [delete]
func (h *OfficeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid office ID"))
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.officeService.Delete(c.Request.Context(), id, adminID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Office deleted"}))
}
