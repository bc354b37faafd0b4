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

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.GET("/me", middleware.RequireRole(model.RoleStudent), h.GetMine)
		payments.PATCH("/:id/paid", middleware.RequireRole(model.RoleStaff), h.MarkPaid)
		payments.PATCH("/:id/unpaid", middleware.RequireRole(model.RoleStaff), h.MarkUnpaid)
	}
}

// GetMine returns the calling boarder's boarding fee record
// @Summary      Get own boarding fee
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payments/me [get]
func (h *PaymentHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	payment, err := h.paymentService.GetForStudent(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// MarkPaid flags a boarding fee as settled
// @Summary      Mark boarding fee paid
// @Description  Only the dormitory owner assigned to the student may flip the flag
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id}/paid [patch]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid payment ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	payment, err := h.paymentService.MarkPaid(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// MarkUnpaid reverts a boarding fee to unsettled
// @Summary      Mark boarding fee unpaid
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id}/unpaid [patch]
func (h *PaymentHandler) MarkUnpaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid payment ID"))
		return
	}
	userID, _ := middleware.UserID(c)

	payment, err := h.paymentService.MarkUnpaid(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}
