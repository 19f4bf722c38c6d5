package farm

import "time"

// AdvanceGrowth ripens every growing crop whose growth time has elapsed at
// now and returns how many tiles changed.
func (s *State) AdvanceGrowth(now time.Time, catalog Catalog) int {
	ripened := 0
	for i := range s.Grid {
		t := &s.Grid[i]
		if !t.HasCrop || t.CropState != CropStateGrowing || t.PlantedAt == nil {
			continue
		}
		need, ok := catalog.GrowthDuration(t.CropType)
		if !ok {
			continue
		}
		if now.Sub(*t.PlantedAt) >= need {
			t.Ripen()
			ripened++
		}
	}
	return ripened
}
