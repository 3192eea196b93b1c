package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// StaffService is the staff registry used by the HTTP layer.
type StaffService interface {
	Create(ctx context.Context, req models.NewStaffRequest) (models.Staff, error)
	List(ctx context.Context) ([]models.Staff, error)
	VerifyPIN(ctx context.Context, staffID, pin string) (models.Staff, error)
}

// StaffHandler exposes staff registration.
type StaffHandler struct {
	svc    StaffService
	logger *zap.Logger
}

// NewStaffHandler constructs the staff handler.
func NewStaffHandler(svc StaffService, logger *zap.Logger) *StaffHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffHandler{svc: svc, logger: logger}
}

// Create registers a staff member.
func (h *StaffHandler) Create(c *gin.Context) {
	var req models.NewStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// List returns active staff members.
func (h *StaffHandler) List(c *gin.Context) {
	members, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
