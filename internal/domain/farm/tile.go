package farm

import "time"

type CropType string

const (
	CropNone   CropType = ""
	CropWheat  CropType = "wheat"
	CropCorn   CropType = "corn"
	CropPotato CropType = "potato"
)

// SeedItem is the inventory id consumed when planting the crop.
func (c CropType) SeedItem() string {
	return string(c) + "_seeds"
}

type CropState string

const (
	CropStateNone    CropState = ""
	CropStateGrowing CropState = "growing"
	CropStateReady   CropState = "ready"
)

type Tile struct {
	IsPlowed  bool       `json:"is_plowed"`
	HasCrop   bool       `json:"has_crop"`
	CropType  CropType   `json:"crop_type,omitempty"`
	CropState CropState  `json:"crop_state,omitempty"`
	PlantedAt *time.Time `json:"planted_at,omitempty"`
}

// Valid reports whether the tile is in a combination the engine can produce.
func (t Tile) Valid() bool {
	if t.CropState != CropStateNone && !t.HasCrop {
		return false
	}
	if t.HasCrop && (t.CropType == CropNone || t.CropState == CropStateNone) {
		return false
	}
	if !t.HasCrop && t.CropType != CropNone {
		return false
	}
	return (t.PlantedAt != nil) == (t.CropState == CropStateGrowing)
}

// Status is the text scan() reports for the tile.
func (t Tile) Status() string {
	if t.HasCrop {
		return string(t.CropState) + " " + string(t.CropType)
	}
	if t.IsPlowed {
		return "plowed"
	}
	return "empty"
}

func (t *Tile) Plant(crop CropType, at time.Time) {
	planted := at
	t.HasCrop = true
	t.CropType = crop
	t.CropState = CropStateGrowing
	t.PlantedAt = &planted
}

func (t *Tile) Ripen() {
	t.CropState = CropStateReady
	t.PlantedAt = nil
}

// ClearCrop resets the crop fields. The soil stays plowed.
func (t *Tile) ClearCrop() {
	t.HasCrop = false
	t.CropType = CropNone
	t.CropState = CropStateNone
	t.PlantedAt = nil
}

func (t Tile) clone() Tile {
	out := t
	if t.PlantedAt != nil {
		at := *t.PlantedAt
		out.PlantedAt = &at
	}
	return out
}
