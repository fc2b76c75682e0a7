package ingest

import (
	"errors"
	"strings"

	"github.com/paragraf-app/core/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNameTaken     = errors.New("project name already exists")
	ErrEmptyDocument = errors.New("document contains no paragraphs")
)

const unitInsertBatchSize = 200

// Service turns uploaded documents into a project with seeded units.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// CreateInput carries the parsed upload. PartialData may be nil when no
// partial translation was supplied.
type CreateInput struct {
	Name         string
	Instructions string
	SourceName   string
	SourceData   []byte
	PartialName  string
	PartialData  []byte
}

// CreateResult is the persisted project plus its seeding summary.
type CreateResult struct {
	Project  *models.ProjectModel
	Total    int
	Approved int
}

// CreateProject extracts, segments, seeds and persists everything in one
// transaction. On any failure nothing is written.
func (s *Service) CreateProject(in CreateInput) (*CreateResult, error) {
	source, err := Extract(in.SourceName, in.SourceData)
	if err != nil {
		return nil, err
	}
	originals := Segment(source)
	if len(originals) == 0 {
		return nil, ErrEmptyDocument
	}

	var partials []string
	if len(in.PartialData) > 0 {
		partial, err := Extract(in.PartialName, in.PartialData)
		if err != nil {
			return nil, err
		}
		partials = Segment(partial)
	}

	project := &models.ProjectModel{
		Name:         strings.TrimSpace(in.Name),
		Instructions: strings.TrimSpace(in.Instructions),
		Memory:       models.StringArray{},
	}

	var approved int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProjectModel{}).Where("name = ?", project.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrNameTaken
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		units := Seed(project.ID, originals, partials)
		for i := range units {
			if units[i].Status == models.UnitApproved {
				approved++
			}
		}
		return tx.CreateInBatches(units, unitInsertBatchSize).Error
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{Project: project, Total: len(originals), Approved: approved}, nil
}
