package ingest

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/pkg/response"
)

// uploads are capped well above any realistic manuscript
const maxUploadBytes = 64 << 20

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/projects", authMW)
	g.POST("", h.create)
}

// POST /projects
// Multipart: name, instructions, source file, optional partial translation.
func (h *Handler) create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		response.BadRequest(c, "name is required")
		return
	}

	srcHeader, err := c.FormFile("source")
	if err != nil {
		response.BadRequest(c, "source file is required")
		return
	}
	srcName, srcData, err := readUpload(srcHeader)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	in := CreateInput{
		Name:         name,
		Instructions: c.PostForm("instructions"),
		SourceName:   srcName,
		SourceData:   srcData,
	}

	if trHeader, err := c.FormFile("translation"); err == nil {
		trName, trData, err := readUpload(trHeader)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		in.PartialName = trName
		in.PartialData = trData
	}

	result, err := h.svc.CreateProject(in)
	if err != nil {
		var extractErr *ExtractError
		switch {
		case errors.As(err, &extractErr), errors.Is(err, ErrEmptyDocument):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, ErrNameTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Created(c, gin.H{
		"id":             result.Project.ID,
		"name":           result.Project.Name,
		"instructions":   result.Project.Instructions,
		"total_units":    result.Total,
		"approved_units": result.Approved,
		"created":        result.Project.CreatedAt,
	})
}

func readUpload(header *multipart.FileHeader) (string, []byte, error) {
	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
