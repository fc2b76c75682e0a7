package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/modules/project"
	"github.com/paragraf-app/core/internal/modules/unit"
)

// pending units export as a visible marker, never as silence
const placeholderFormat = "[ÇEVİRİ BEKLİYOR #%d]"

var ErrUnknownFormat = errors.New("unknown export format")

// Document is a rendered export ready to download or upload.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	projects *project.Service
	units    *unit.Service
}

func NewService(projects *project.Service, units *unit.Service) *Service {
	return &Service{projects: projects, units: units}
}

// Render assembles the project document in reading order. Approved units
// contribute their translation; pending units a placeholder marking the
// gap. A nil result without error means the project does not exist.
func (s *Service) Render(projectID, format string) (*Document, error) {
	p, err := s.projects.GetByID(projectID)
	if err != nil || p == nil {
		return nil, err
	}
	units, err := s.units.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	paragraphs := buildParagraphs(units)

	switch format {
	case "", "txt":
		return &Document{
			Filename:    p.Name + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(renderText(p.Name, paragraphs)),
		}, nil
	case "docx":
		data, err := renderDocx(p.Name, paragraphs)
		if err != nil {
			return nil, err
		}
		return &Document{
			Filename:    p.Name + ".docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func buildParagraphs(units []models.UnitModel) []string {
	out := make([]string, len(units))
	for i, u := range units {
		if u.Status == models.UnitApproved {
			out[i] = u.Translation
		} else {
			out[i] = fmt.Sprintf(placeholderFormat, u.Seq+1)
		}
	}
	return out
}

func renderText(title string, paragraphs []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(paragraphs, "\n\n"))
	b.WriteString("\n")
	return b.String()
}
