package farm

import (
	"sort"
	"time"
)

// CropDef describes one crop. UnlockCost is charged when the crop is
// unlocked; Requires lists crops that must be unlocked first.
type CropDef struct {
	Type           CropType      `json:"type"`
	GrowthDuration time.Duration `json:"growth_duration"`
	UnlockCost     int64         `json:"unlock_cost"`
	Requires       []CropType    `json:"requires,omitempty"`
}

// ItemPrice holds the shop prices for one inventory item. Zero means the
// shop does not offer that side of the trade.
type ItemPrice struct {
	Item string `json:"item"`
	Buy  int64  `json:"buy,omitempty"`
	Sell int64  `json:"sell,omitempty"`
}

type PriceList []ItemPrice

type Catalog struct {
	Crops  map[CropType]CropDef
	Prices map[string]ItemPrice
}

func DefaultCatalog() Catalog {
	return Catalog{
		Crops: map[CropType]CropDef{
			CropWheat:  {Type: CropWheat, GrowthDuration: 1 * time.Second},
			CropCorn:   {Type: CropCorn, GrowthDuration: 2 * time.Second, UnlockCost: 150},
			CropPotato: {Type: CropPotato, GrowthDuration: 3 * time.Second, UnlockCost: 200, Requires: []CropType{CropCorn}},
		},
		Prices: map[string]ItemPrice{
			"wheat_seeds":  {Item: "wheat_seeds", Buy: 10, Sell: 5},
			"corn_seeds":   {Item: "corn_seeds", Buy: 20, Sell: 10},
			"potato_seeds": {Item: "potato_seeds", Buy: 15, Sell: 7},
			"wheat":        {Item: "wheat", Sell: 25},
			"corn":         {Item: "corn", Sell: 40},
			"potato":       {Item: "potato", Sell: 30},
		},
	}
}

func (c Catalog) IsCrop(crop CropType) bool {
	_, ok := c.Crops[crop]
	return ok
}

func (c Catalog) Crop(crop CropType) (CropDef, bool) {
	def, ok := c.Crops[crop]
	return def, ok
}

// GrowthDuration returns the time a crop needs to ripen. Unknown crops
// never ripen.
func (c Catalog) GrowthDuration(crop CropType) (time.Duration, bool) {
	def, ok := c.Crops[crop]
	if !ok {
		return 0, false
	}
	return def.GrowthDuration, true
}

func (c Catalog) BuyPrice(item string) (int64, bool) {
	p, ok := c.Prices[item]
	if !ok || p.Buy <= 0 {
		return 0, false
	}
	return p.Buy, true
}

func (c Catalog) SellPrice(item string) (int64, bool) {
	p, ok := c.Prices[item]
	if !ok || p.Sell <= 0 {
		return 0, false
	}
	return p.Sell, true
}

// PriceList returns the prices sorted by item id.
func (c Catalog) PriceList() PriceList {
	out := make(PriceList, 0, len(c.Prices))
	for _, p := range c.Prices {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

// InventoryItems lists every seed and crop id the catalog knows about.
func (c Catalog) InventoryItems() []string {
	seen := map[string]bool{}
	for crop := range c.Crops {
		seen[string(crop)] = true
		seen[crop.SeedItem()] = true
	}
	for item := range c.Prices {
		seen[item] = true
	}
	out := make([]string, 0, len(seen))
	for item := range seen {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
