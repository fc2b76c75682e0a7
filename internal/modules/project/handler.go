package project

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/pkg/pagination"
	"github.com/paragraf-app/core/internal/pkg/response"
)

type projectResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Memory       []string  `json:"memory"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Progress     *Progress `json:"progress,omitempty"`
}

func toResponse(p *models.ProjectModel, prog *Progress) projectResponse {
	memory := []string(p.Memory)
	if memory == nil {
		memory = []string{}
	}
	return projectResponse{
		ID: p.ID, Name: p.Name, Instructions: p.Instructions,
		Memory: memory, Created: p.CreatedAt, Modified: p.UpdatedAt,
		Progress: prog,
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id/name", h.rename)
	g.PUT("/:id/instructions", h.updateInstructions)
	g.DELETE("/:id", h.delete)

	g.GET("/:id/memory", h.listRules)
	g.POST("/:id/memory", h.appendRule)
	g.DELETE("/:id/memory", h.clearRules)
	g.DELETE("/:id/memory/:index", h.removeRule)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]projectResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i], nil)
	}
	response.Paged(c, out, pag)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	prog, err := h.svc.ProgressOf(p.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(p, &prog))
}

type renameDTO struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) rename(c *gin.Context) {
	var dto renameDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Rename(c.Param("id"), dto.Name)
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p, nil))
}

type instructionsDTO struct {
	Instructions string `json:"instructions"`
}

func (h *Handler) updateInstructions(c *gin.Context) {
	var dto instructionsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.UpdateInstructions(c.Param("id"), dto.Instructions)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p, nil))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listRules(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	memory := []string(p.Memory)
	if memory == nil {
		memory = []string{}
	}
	response.OK(c, memory)
}

type ruleDTO struct {
	Rule string `json:"rule" binding:"required"`
}

func (h *Handler) appendRule(c *gin.Context) {
	var dto ruleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.AppendRule(c.Param("id"), dto.Rule)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p, nil))
}

func (h *Handler) removeRule(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid rule index")
		return
	}
	p, err := h.svc.RemoveRule(c.Param("id"), index)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(p, nil))
}

func (h *Handler) clearRules(c *gin.Context) {
	p, err := h.svc.ClearRules(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}
