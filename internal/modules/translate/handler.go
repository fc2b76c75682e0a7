package translate

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/modules/project"
	"github.com/paragraf-app/core/internal/modules/unit"
	"github.com/paragraf-app/core/internal/pkg/response"
)

type Handler struct {
	svc        *Service
	unitSvc    *unit.Service
	projectSvc *project.Service
}

func NewHandler(svc *Service, unitSvc *unit.Service, projectSvc *project.Service) *Handler {
	return &Handler{svc: svc, unitSvc: unitSvc, projectSvc: projectSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/units", authMW)
	g.POST("/:id/translate", h.translate)
	g.POST("/:id/learn", h.learn)
}

// POST /units/:id/translate
// Redrafts the unit with the provider and stores the result as the
// working translation.
func (h *Handler) translate(c *gin.Context) {
	u, p, ok := h.loadUnitWithProject(c)
	if !ok {
		return
	}

	draft, err := h.svc.Translate(c.Request.Context(), u.Original, p.Instructions, p.Memory)
	if err != nil {
		abortProviderErr(c, err)
		return
	}

	if _, err := h.unitSvc.UpdateTranslation(u.ID, draft, models.UnitPending); err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":          u.ID,
		"seq":         u.Seq,
		"translation": draft,
		"status":      models.UnitPending,
	})
}

type learnDTO struct {
	Correction string `json:"correction" binding:"required"`
}

// POST /units/:id/learn
// Derives a style rule from the reviewer's correction of this unit's
// draft and appends it to the project memory.
func (h *Handler) learn(c *gin.Context) {
	var dto learnDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, p, ok := h.loadUnitWithProject(c)
	if !ok {
		return
	}
	if strings.TrimSpace(u.Translation) == "" {
		response.BadRequest(c, "unit has no draft to learn from")
		return
	}

	rule, err := h.svc.ExtractRule(c.Request.Context(), u.Translation, dto.Correction)
	if err != nil {
		abortProviderErr(c, err)
		return
	}

	updated, err := h.projectSvc.AppendRule(p.ID, rule)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"rule":   rule,
		"memory": []string(updated.Memory),
	})
}

func (h *Handler) loadUnitWithProject(c *gin.Context) (*models.UnitModel, *models.ProjectModel, bool) {
	u, err := h.unitSvc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil, nil, false
	}
	if u == nil {
		response.NotFound(c)
		return nil, nil, false
	}

	p, err := h.projectSvc.GetByID(u.ProjectID)
	if err != nil {
		response.InternalError(c, err)
		return nil, nil, false
	}
	if p == nil {
		response.NotFound(c)
		return nil, nil, false
	}
	return u, p, true
}

func abortProviderErr(c *gin.Context, err error) {
	var perr *ProviderError
	var serr *StructuredOutputError
	switch {
	case errors.As(err, &perr), errors.As(err, &serr), errors.Is(err, ErrNoProvider):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
