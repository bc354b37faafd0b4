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
	"github.com/shopspring/decimal"
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (h *StudentHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public self-registration
	router.POST("/api/students/register", h.Register)

	students := router.Group("/api/students")
	{
		students.GET("/me", middleware.RequireRole(model.RoleStudent), h.GetMe)

		admin := students.Group("")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("", h.List)
			admin.PATCH("/:id/activate", h.Activate)
			admin.DELETE("/:id/reject", h.Reject)
			admin.POST("/:id/program-chair", h.AssignProgramChair)
			admin.POST("/:id/dorm-owner", h.AssignDormOwner)
		}
	}
}

// Register creates a pending student account
// @Summary      Register a student
// @Description  Creates a student account in PENDING status awaiting admin activation
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterStudentRequest  true  "Registration Payload"
// @Success      201      {object}  response.Response{data=service.StudentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/students/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	student, err := h.studentService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, student))
}

// GetMe returns the authenticated student's own profile
// @Summary      Get own student profile
// @Tags         students
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.StudentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/students/me [get]
func (h *StudentHandler) GetMe(c *gin.Context) {
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

	c.JSON(http.StatusOK, response.Success(http.StatusOK, student))
}

// List returns students, optionally filtered by status
// @Summary      List students
// @Tags         students
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, ACTIVE, REJECTED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.StudentResponse}
// @Router       /api/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	status := c.Query("status")

	students, total, err := h.studentService.List(c.Request.Context(), status, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, students, p.Page, p.Limit, total))
}

// Activate flips a pending student to ACTIVE and opens their clearance term
// @Summary      Activate a student
// @Description  Activates a pending registration and creates the term's clearance requests
// @Tags         students
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Student ID"
// @Param        payload  body      service.ActivateStudentRequest  true  "Term Payload"
// @Success      200      {object}  response.Response{data=service.StudentResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/students/{id}/activate [patch]
func (h *StudentHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid student ID"))
		return
	}
	adminID, _ := middleware.UserID(c)

	var req service.ActivateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	student, err := h.studentService.Activate(c.Request.Context(), id, adminID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, student))
}

// Reject removes a pending registration and its account
// @Summary      Reject a student registration
// @Tags         students
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Student ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/students/{id}/reject [delete]
func (h *StudentHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid student ID"))
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.studentService.Reject(c.Request.Context(), id, adminID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Registration rejected"}))
}

// AssignProgramChair pins a specific program chair to a student
// @Summary      Assign program chair
// @Tags         students
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Student ID"
// @Param        payload  body      object  true  "Chair Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/students/{id}/program-chair [post]
func (h *StudentHandler) AssignProgramChair(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid student ID"))
		return
	}
	adminID, _ := middleware.UserID(c)

	var req struct {
		ChairID uuid.UUID `json:"chair_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.studentService.AssignProgramChair(c.Request.Context(), id, req.ChairID, adminID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Program chair assigned"}))
}

// AssignDormOwner links a boarder to a dormitory owner and opens their boarding fee
// @Summary      Assign dormitory owner
// @Tags         students
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Student ID"
// @Param        payload  body      object  true  "Dorm Owner Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/students/{id}/dorm-owner [post]
func (h *StudentHandler) AssignDormOwner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid student ID"))
		return
	}
	adminID, _ := middleware.UserID(c)

	var req struct {
		StaffID     uuid.UUID       `json:"staff_id" binding:"required"`
		BoardingFee decimal.Decimal `json:"boarding_fee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.studentService.AssignDormOwner(c.Request.Context(), id, req.StaffID, adminID, req.BoardingFee); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Dormitory owner assigned"}))
}
