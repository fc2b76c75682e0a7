package prefetch

import (
	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/pkg/pagination"
	"github.com/paragraf-app/core/internal/pkg/response"
	"github.com/paragraf-app/core/internal/pkg/taskqueue"
)

type Handler struct {
	svc   *Service
	tasks *taskqueue.Service
}

func NewHandler(svc *Service, tasks *taskqueue.Service) *Handler {
	return &Handler{svc: svc, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/prefetch", authMW)
	g.GET("/runs", h.listRuns)
	g.POST("/fill", h.fill)
}

// GET /prefetch/runs
func (h *Handler) listRuns(c *gin.Context) {
	q := pagination.FromContext(c)

	taskType := TaskTypeFill
	var status *taskqueue.TaskStatus
	if raw := c.Query("status"); raw != "" {
		st := taskqueue.TaskStatus(raw)
		status = &st
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), q.Page, q.Size, &taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

type fillDTO struct {
	ProjectID string `json:"project_id" binding:"required"`
	From      int    `json:"from"`
	Window    int    `json:"window"`
}

// POST /prefetch/fill
func (h *Handler) fill(c *gin.Context) {
	var dto fillDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Fill(c.Request.Context(), dto.ProjectID, dto.From, dto.Window); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ok": 1})
}
