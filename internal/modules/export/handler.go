package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/pkg/response"
)

type Handler struct {
	svc      *Service
	uploader *Uploader
}

// NewHandler accepts a nil uploader when S3 snapshots are disabled.
func NewHandler(svc *Service, uploader *Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects/:id/export", authMW)
	g.GET("", h.download)
	g.POST("/upload", h.upload)
}

// GET /projects/:id/export?format=txt|docx
func (h *Handler) download(c *gin.Context) {
	doc, err := h.renderFor(c)
	if doc == nil || err != nil {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(200, doc.ContentType, doc.Data)
}

// POST /projects/:id/export/upload
func (h *Handler) upload(c *gin.Context) {
	if h.uploader == nil {
		response.BadRequest(c, ErrUploadDisabled.Error())
		return
	}

	doc, err := h.renderFor(c)
	if doc == nil || err != nil {
		return
	}

	key := fmt.Sprintf("%s/%s-%s", c.Param("id"), time.Now().UTC().Format("20060102-150405"), doc.Filename)
	location, err := h.uploader.Upload(c.Request.Context(), key, doc.ContentType, doc.Data)
	if err != nil {
		response.BadGateway(c, err.Error())
		return
	}
	response.OK(c, gin.H{"location": location})
}

// renderFor loads and renders the project, writing the error response
// itself; a nil document means the response is already sent.
func (h *Handler) renderFor(c *gin.Context) (*Document, error) {
	doc, err := h.svc.Render(c.Param("id"), c.DefaultQuery("format", "txt"))
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			response.BadRequest(c, err.Error())
			return nil, err
		}
		response.InternalError(c, err)
		return nil, err
	}
	if doc == nil {
		response.NotFound(c)
		return nil, nil
	}
	return doc, nil
}
