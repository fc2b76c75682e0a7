package session

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/pkg/response"
)

type Handler struct{ engine *Engine }

func NewHandler(engine *Engine) *Handler { return &Handler{engine: engine} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/projects/:id/session", authMW, h.open)

	g := rg.Group("/session", authMW)
	g.GET("/:sid", h.get)
	g.DELETE("/:sid", h.close)
	g.POST("/:sid/advance", h.advance)
	g.POST("/:sid/retreat", h.retreat)
	g.POST("/:sid/jump", h.jump)
	g.POST("/:sid/next-pending", h.nextPending)
}

// POST /projects/:id/session
// Opens a review session at the first pending unit.
func (h *Handler) open(c *gin.Context) {
	view, err := h.engine.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrProjectEmpty) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if view.Complete && view.ID == "" {
		response.OK(c, view)
		return
	}
	response.Created(c, view)
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.engine.Get(c.Request.Context(), c.Param("sid"))
	h.respond(c, view, err)
}

func (h *Handler) advance(c *gin.Context) {
	view, err := h.engine.Advance(c.Request.Context(), c.Param("sid"))
	h.respond(c, view, err)
}

func (h *Handler) retreat(c *gin.Context) {
	view, err := h.engine.Retreat(c.Request.Context(), c.Param("sid"))
	h.respond(c, view, err)
}

type jumpDTO struct {
	Seq *int `json:"seq" binding:"required"`
}

func (h *Handler) jump(c *gin.Context) {
	var dto jumpDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.engine.Jump(c.Request.Context(), c.Param("sid"), *dto.Seq)
	h.respond(c, view, err)
}

func (h *Handler) nextPending(c *gin.Context) {
	view, err := h.engine.NextPending(c.Request.Context(), c.Param("sid"))
	h.respond(c, view, err)
}

func (h *Handler) close(c *gin.Context) {
	if err := h.engine.Close(c.Request.Context(), c.Param("sid")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) respond(c *gin.Context, view *View, err error) {
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, view)
}
