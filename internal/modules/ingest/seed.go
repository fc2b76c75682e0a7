package ingest

import (
	"strings"

	"github.com/paragraf-app/core/internal/models"
)

// Seed pairs source paragraphs with an optional partial translation by
// position. A unit whose paired translation paragraph is non-empty starts
// out approved; everything else starts pending. Surplus translation
// paragraphs beyond the source length are discarded.
func Seed(projectID string, originals, translations []string) []models.UnitModel {
	units := make([]models.UnitModel, len(originals))
	for i, original := range originals {
		u := models.UnitModel{
			ProjectID: projectID,
			Seq:       i,
			Original:  original,
			Status:    models.UnitPending,
		}
		if i < len(translations) {
			if tr := strings.TrimSpace(translations[i]); tr != "" {
				u.Translation = tr
				u.Status = models.UnitApproved
			}
		}
		units[i] = u
	}
	return units
}
