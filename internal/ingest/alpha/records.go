package alpha

import (
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Records converts sessions into one record per exercise. Warmups are
// dropped and working sets are numbered from 1 in export order, so the
// metric engine sees the same set indices a workbook row would carry.
func Records(sessions []Session) *models.Table {
	t := &models.Table{}
	for _, s := range sessions {
		day := models.DateOnly(s.Date)
		for _, ex := range s.Exercises {
			order := ex.Number
			rec := models.Record{
				Date:   day,
				Name:   ex.Name,
				Order:  &order,
				Source: models.SourceAlpha,
				Sets:   map[int]models.SetEntry{},
			}
			idx := 0
			for _, set := range ex.Sets {
				if set.Warmup {
					continue
				}
				idx++
				rec.Sets[idx] = models.SetEntry{
					Weight: models.Float(set.WeightKg),
					Reps:   models.Float(float64(set.Reps)),
				}
			}
			if idx == 0 {
				continue
			}
			t.Records = append(t.Records, rec)
		}
	}
	t.SetColumns = models.SetColumnsOf(t.Records)
	return t
}
