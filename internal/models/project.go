package models

// ProjectModel stores one translation job: a named document plus the
// reviewer's standing instructions and learned style-memory rules.
type ProjectModel struct {
	Base
	Name         string      `json:"name"         gorm:"uniqueIndex;not null"`
	Instructions string      `json:"instructions" gorm:"type:text"`
	Memory       StringArray `json:"memory"       gorm:"type:longtext"`
}

func (ProjectModel) TableName() string { return "projects" }
