package unit

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/pkg/response"
)

// SessionNotifier advances an open review session after an approval.
// Nil-safe wiring keeps the unit module usable without sessions.
type SessionNotifier interface {
	UnitApproved(ctx context.Context, sessionID, projectID string, seq int) error
}

type unitResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Seq         int               `json:"seq"`
	Original    string            `json:"original"`
	Translation string            `json:"translation"`
	Status      models.UnitStatus `json:"status"`
	Created     time.Time         `json:"created"`
	Modified    time.Time         `json:"modified"`
}

func toResponse(u *models.UnitModel) unitResponse {
	return unitResponse{
		ID: u.ID, ProjectID: u.ProjectID, Seq: u.Seq,
		Original: u.Original, Translation: u.Translation, Status: u.Status,
		Created: u.CreatedAt, Modified: u.UpdatedAt,
	}
}

type Handler struct {
	svc      *Service
	notifier SessionNotifier
}

func NewHandler(svc *Service, notifier SessionNotifier) *Handler {
	return &Handler{svc: svc, notifier: notifier}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/projects/:id/units", authMW, h.listByProject)

	g := rg.Group("/units", authMW)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.POST("/:id/approve", h.approve)
	g.POST("/:id/reopen", h.reopen)
}

func (h *Handler) listByProject(c *gin.Context) {
	units, err := h.svc.ListByProject(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]unitResponse, len(units))
	for i := range units {
		out[i] = toResponse(&units[i])
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

type updateUnitDTO struct {
	Translation *string            `json:"translation"`
	Status      *models.UnitStatus `json:"status"`
}

func (h *Handler) update(c *gin.Context) {
	var dto updateUnitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}

	text := u.Translation
	if dto.Translation != nil {
		text = *dto.Translation
	}
	status := u.Status
	if dto.Status != nil {
		if *dto.Status != models.UnitPending && *dto.Status != models.UnitApproved {
			response.BadRequest(c, "invalid status")
			return
		}
		status = *dto.Status
	}

	if _, err := h.svc.UpdateTranslation(u.ID, text, status); err != nil {
		response.InternalError(c, err)
		return
	}
	u.Translation = text
	u.Status = status
	response.OK(c, toResponse(u))
}

type approveDTO struct {
	Translation string `json:"translation" binding:"required"`
	SessionID   string `json:"session_id"`
}

// POST /units/:id/approve
// Confirms the translation; an open session auto-advances to the next
// unit.
func (h *Handler) approve(c *gin.Context) {
	var dto approveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.Approve(c.Param("id"), dto.Translation)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	u.Translation = dto.Translation
	u.Status = models.UnitApproved

	if dto.SessionID != "" && h.notifier != nil {
		if err := h.notifier.UnitApproved(c.Request.Context(), dto.SessionID, u.ProjectID, u.Seq); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) reopen(c *gin.Context) {
	u, err := h.svc.Reopen(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	u.Status = models.UnitPending
	response.OK(c, toResponse(u))
}
