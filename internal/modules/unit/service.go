package unit

import (
	"errors"

	"github.com/paragraf-app/core/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ListByProject returns a project's units ordered by seq ascending.
func (s *Service) ListByProject(projectID string) ([]models.UnitModel, error) {
	var units []models.UnitModel
	err := s.db.Where("project_id = ?", projectID).Order("seq asc").Find(&units).Error
	return units, err
}

func (s *Service) GetByID(id string) (*models.UnitModel, error) {
	var u models.UnitModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetBySeq(projectID string, seq int) (*models.UnitModel, error) {
	var u models.UnitModel
	if err := s.db.First(&u, "project_id = ? AND seq = ?", projectID, seq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpdateTranslation overwrites the working translation and status.
// Last write wins; the original text is untouched.
func (s *Service) UpdateTranslation(id, text string, status models.UnitStatus) (*models.UnitModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}
	err = s.db.Model(u).Updates(map[string]interface{}{
		"translation": text,
		"status":      status,
	}).Error
	return u, err
}

// SaveDraftIfPending stores a machine draft only while the unit is still
// pending. A concurrent approval wins: the stale draft is discarded and
// false is returned.
func (s *Service) SaveDraftIfPending(id, text string) (bool, error) {
	res := s.db.Model(&models.UnitModel{}).
		Where("id = ? AND status = ?", id, models.UnitPending).
		Update("translation", text)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Approve confirms a translation and marks the unit approved.
func (s *Service) Approve(id, text string) (*models.UnitModel, error) {
	return s.UpdateTranslation(id, text, models.UnitApproved)
}

// Reopen puts an approved unit back under review, keeping its text.
func (s *Service) Reopen(id string) (*models.UnitModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}
	err = s.db.Model(u).Update("status", models.UnitPending).Error
	return u, err
}

// FirstPending returns the lowest-seq pending unit, or nil when the
// whole project is approved.
func (s *Service) FirstPending(projectID string) (*models.UnitModel, error) {
	return s.firstPendingWhere(s.db.Where("project_id = ?", projectID))
}

// FirstPendingFrom returns the lowest-seq pending unit at or after seq.
func (s *Service) FirstPendingFrom(projectID string, seq int) (*models.UnitModel, error) {
	return s.firstPendingWhere(s.db.Where("project_id = ? AND seq >= ?", projectID, seq))
}

func (s *Service) firstPendingWhere(tx *gorm.DB) (*models.UnitModel, error) {
	var u models.UnitModel
	err := tx.Where("status = ?", models.UnitPending).Order("seq asc").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PendingInRange returns undrafted pending units with seq in [from, to).
func (s *Service) PendingInRange(projectID string, from, to int) ([]models.UnitModel, error) {
	var units []models.UnitModel
	err := s.db.
		Where("project_id = ? AND seq >= ? AND seq < ?", projectID, from, to).
		Where("status = ? AND (translation IS NULL OR translation = '')", models.UnitPending).
		Order("seq asc").
		Find(&units).Error
	return units, err
}

func (s *Service) CountTotal(projectID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.UnitModel{}).Where("project_id = ?", projectID).Count(&n).Error
	return n, err
}

func (s *Service) CountApproved(projectID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.UnitModel{}).
		Where("project_id = ? AND status = ?", projectID, models.UnitApproved).
		Count(&n).Error
	return n, err
}
