package models

// UnitStatus is the review state of a translation unit.
type UnitStatus string

const (
	// UnitPending means the unit awaits reviewer approval. A pending unit
	// may already carry a machine draft in Translation.
	UnitPending UnitStatus = "pending"
	// UnitApproved means a human explicitly confirmed the translation.
	UnitApproved UnitStatus = "approved"
)

// UnitModel stores one source paragraph and its translation state.
// Units of a project, ordered by Seq ascending, reconstruct the original
// paragraph order exactly; Seq values are contiguous from 0.
type UnitModel struct {
	Base
	ProjectID   string     `json:"project_id"  gorm:"type:char(36);index;uniqueIndex:idx_project_seq;not null"`
	Seq         int        `json:"seq"         gorm:"uniqueIndex:idx_project_seq;not null"`
	Original    string     `json:"original"    gorm:"type:longtext;not null"` // immutable after creation
	Translation string     `json:"translation" gorm:"type:longtext"`
	Status      UnitStatus `json:"status"      gorm:"type:varchar(16);default:'pending';index"`
}

func (UnitModel) TableName() string { return "units" }
