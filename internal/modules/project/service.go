package project

import (
	"errors"

	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/pkg/pagination"
	"github.com/paragraf-app/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrNameTaken    = errors.New("project name already exists")
	ErrRuleNotFound = errors.New("memory rule index out of range")
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Progress summarizes how far a project's review has come.
type Progress struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
}

func (s *Service) List(q pagination.Query) ([]models.ProjectModel, response.Pagination, error) {
	tx := s.db.Model(&models.ProjectModel{}).Order("created_at DESC")
	var items []models.ProjectModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) GetByID(id string) (*models.ProjectModel, error) {
	var p models.ProjectModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) ProgressOf(projectID string) (Progress, error) {
	var prog Progress
	err := s.db.Model(&models.UnitModel{}).
		Where("project_id = ?", projectID).Count(&prog.Total).Error
	if err != nil {
		return prog, err
	}
	err = s.db.Model(&models.UnitModel{}).
		Where("project_id = ? AND status = ?", projectID, models.UnitApproved).
		Count(&prog.Approved).Error
	return prog, err
}

func (s *Service) Rename(id, name string) (*models.ProjectModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}

	var count int64
	if err := s.db.Model(&models.ProjectModel{}).
		Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrNameTaken
	}

	if err := s.db.Model(p).Update("name", name).Error; err != nil {
		return nil, err
	}
	p.Name = name
	return p, nil
}

func (s *Service) UpdateInstructions(id, instructions string) (*models.ProjectModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	if err := s.db.Model(p).Update("instructions", instructions).Error; err != nil {
		return nil, err
	}
	p.Instructions = instructions
	return p, nil
}

// Delete removes the project and all of its units.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.UnitModel{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProjectModel{}, "id = ?", id).Error
	})
}

// AppendRule adds a learned style rule to the project memory.
func (s *Service) AppendRule(id, rule string) (*models.ProjectModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	p.Memory = append(p.Memory, rule)
	return p, s.db.Model(p).Update("memory", p.Memory).Error
}

// RemoveRule deletes the rule at the given index.
func (s *Service) RemoveRule(id string, index int) (*models.ProjectModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	if index < 0 || index >= len(p.Memory) {
		return nil, ErrRuleNotFound
	}
	p.Memory = append(p.Memory[:index], p.Memory[index+1:]...)
	return p, s.db.Model(p).Update("memory", p.Memory).Error
}

// ClearRules drops the whole project memory.
func (s *Service) ClearRules(id string) (*models.ProjectModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	p.Memory = models.StringArray{}
	return p, s.db.Model(p).Update("memory", p.Memory).Error
}
