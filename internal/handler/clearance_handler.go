package handler

import (
	"net/http"

	"clearance/internal/middleware"
	"clearance/internal/model"
	"clearance/internal/service"
	"clearance/pkg/pagination"
	"clearance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClearanceHandler struct {
	clearanceService service.ClearanceService
	studentService   service.StudentService
	officeService    service.OfficeService
}

func NewClearanceHandler(
	clearanceService service.ClearanceService,
	studentService service.StudentService,
	officeService service.OfficeService,
) *ClearanceHandler {
	return &ClearanceHandler{
		clearanceService: clearanceService,
		studentService:   studentService,
		officeService:    officeService,
	}
}

func (h *ClearanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/clearance")
	{
		// Student-facing
		group.GET("/requests", middleware.RequireRole(model.RoleStudent), h.ListMyRequests)
		group.POST("/requests/:id/re-request", middleware.RequireRole(model.RoleStudent), h.ReRequest)
		group.GET("/summary", middleware.RequireRole(model.RoleStudent), h.GetMySummary)
		group.GET("/required-offices", middleware.RequireRole(model.RoleStudent), h.RequiredOffices)

		// Office staff
		group.GET("/queue", middleware.RequireRole(model.RoleStaff), h.OfficeQueue)
		group.POST("/requests/:id/approve", middleware.RequireRole(model.RoleStaff), h.Approve)
		group.POST("/requests/:id/deny", middleware.RequireRole(model.RoleStaff), h.Deny)

		// Program chair
		group.POST("/:id/unlock", middleware.RequireRole(model.RoleProgramChair), h.UnlockPermit)
		group.GET("/:id/can-print", middleware.RequireRole(model.RoleProgramChair), h.CanPrint)

		// Admin
		group.POST("/initialize", middleware.RequireRole(model.RoleAdmin), h.Initialize)
	}
}

// ListMyRequests lists the calling student's clearance requests for a term
// @Summary      List own clearance requests
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        school_year  query     string  true  "School year, e.g. 2025-2026"
// @Param        semester     query     string  true  "Semester (FIRST, SECOND, SUMMER)"
// @Success      200          {object}  response.Response{data=[]service.ClearanceRequestResponse}
// @Failure      422          {object}  response.Response
// @Router       /api/clearance/requests [get]
func (h *ClearanceHandler) ListMyRequests(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	requests, err := h.clearanceService.ListForStudent(c.Request.Context(), userID, c.Query("school_year"), c.Query("semester"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// GetMySummary returns the calling student's per-term clearance aggregate
// @Summary      Get own clearance summary
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        school_year  query     string  true  "School year"
// @Param        semester     query     string  true  "Semester"
// @Success      200          {object}  response.Response{data=service.ClearanceSummary}
// @Failure      404          {object}  response.Response
// @Router       /api/clearance/summary [get]
func (h *ClearanceHandler) GetMySummary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	student, err := h.studentService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	studentID, err := uuid.Parse(student.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	summary, err := h.clearanceService.GetSummary(c.Request.Context(), studentID, c.Query("school_year"), c.Query("semester"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// RequiredOffices lists the offices the calling student needs sign-off from
// @Summary      List required offices
// @Description  All non-dormitory offices, plus the dormitory office for boarders
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.OfficeResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/clearance/required-offices [get]
func (h *ClearanceHandler) RequiredOffices(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	student, err := h.studentService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	studentID, err := uuid.Parse(student.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	offices, err := h.officeService.RequiredForStudent(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, offices))
}

// OfficeQueue lists requests addressed to the calling staff member's office
// @Summary      List office queue
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, APPROVED, DENIED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.ClearanceRequestResponse}
// @Failure      404     {object}  response.Response
// @Router       /api/clearance/queue [get]
func (h *ClearanceHandler) OfficeQueue(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	p := pagination.Parse(c)

	requests, total, err := h.clearanceService.ListForOffice(c.Request.Context(), userID, service.OfficeQueueFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requests, p.Page, p.Limit, total))
}

// Approve marks a pending request approved
// @Summary      Approve a clearance request
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/clearance/requests/{id}/approve [post]
func (h *ClearanceHandler) Approve(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.clearanceService.Approve(c.Request.Context(), requestID, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request approved"}))
}

// Deny marks a pending request denied with a reason
// @Summary      Deny a clearance request
// @Tags         clearance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Request ID"
// @Param        payload  body      object  true  "Denial Payload"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/clearance/requests/{id}/deny [post]
func (h *ClearanceHandler) Deny(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Denial reason is required"))
		return
	}

	if err := h.clearanceService.Deny(c.Request.Context(), requestID, userID, req.Reason); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request denied"}))
}

// ReRequest resubmits a denied request for review
// @Summary      Re-request a denied clearance
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/clearance/requests/{id}/re-request [post]
func (h *ClearanceHandler) ReRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.clearanceService.ReRequest(c.Request.Context(), requestID, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request resubmitted"}))
}

// UnlockPermit enables permit printing for a fully cleared student
// @Summary      Unlock exam permit
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Clearance ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/clearance/{id}/unlock [post]
func (h *ClearanceHandler) UnlockPermit(c *gin.Context) {
	clearanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid clearance ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.clearanceService.UnlockPermit(c.Request.Context(), clearanceID, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permit unlocked"}))
}

// CanPrint reports whether the permit for a clearance may be printed
// @Summary      Check permit printability
// @Tags         clearance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Clearance ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clearance/{id}/can-print [get]
func (h *ClearanceHandler) CanPrint(c *gin.Context) {
	clearanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid clearance ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	canPrint, err := h.clearanceService.CanPrint(c.Request.Context(), clearanceID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"can_print": canPrint}))
}

// Initialize creates the term's request batch for one student
// @Summary      Initialize clearance requests
// @Description  Creates pending requests for every office the student needs. Idempotent per term.
// @Tags         clearance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "Initialization Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/clearance/initialize [post]
func (h *ClearanceHandler) Initialize(c *gin.Context) {
	var req struct {
		StudentID  uuid.UUID `json:"student_id" binding:"required"`
		SchoolYear string    `json:"school_year" binding:"required"`
		Semester   string    `json:"semester" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	created, err := h.clearanceService.InitializeRequests(c.Request.Context(), req.StudentID, req.SchoolYear, req.Semester)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"created": len(created)}))
}
