package farm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidConfig   = errors.New("invalid farm config")
	ErrInvalidSnapshot = errors.New("invalid farm snapshot")
	ErrAtMaxSize       = errors.New("farm at max size")
)

const (
	DefaultStartSize  = 1
	DefaultMaxSize    = 5
	DefaultStartMoney = 100
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Config struct {
	StartSize     int
	MaxSize       int
	StartMoney    int64
	Inventory     map[string]int
	UnlockedCrops []CropType
}

func DefaultConfig() Config {
	return Config{
		StartSize:     DefaultStartSize,
		MaxSize:       DefaultMaxSize,
		StartMoney:    DefaultStartMoney,
		Inventory:     map[string]int{},
		UnlockedCrops: []CropType{CropWheat},
	}
}

// State is the authoritative farm. Grid is row-major: the tile at column x,
// row y lives at index y*Size+x.
type State struct {
	Grid      []Tile
	Size      int
	MaxSize   int
	Drone     Position
	Inventory map[string]int
	Money     int64
	Unlocked  map[CropType]bool
}

func NewState(cfg Config, catalog Catalog) (State, error) {
	if cfg.StartSize <= 0 {
		cfg.StartSize = DefaultStartSize
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.StartSize > cfg.MaxSize || cfg.StartMoney < 0 {
		return State{}, ErrInvalidConfig
	}
	st := State{
		Grid:      make([]Tile, cfg.StartSize*cfg.StartSize),
		Size:      cfg.StartSize,
		MaxSize:   cfg.MaxSize,
		Inventory: map[string]int{},
		Money:     cfg.StartMoney,
		Unlocked:  map[CropType]bool{},
	}
	for _, item := range catalog.InventoryItems() {
		st.Inventory[item] = 0
	}
	for item, n := range cfg.Inventory {
		if n < 0 {
			return State{}, fmt.Errorf("%w: negative %s", ErrInvalidConfig, item)
		}
		st.Inventory[item] = n
	}
	for _, crop := range cfg.UnlockedCrops {
		st.Unlocked[crop] = true
	}
	return st, nil
}

func (s State) InBounds(x, y int) bool {
	return x >= 0 && x < s.Size && y >= 0 && y < s.Size
}

func (s State) Index(p Position) int {
	return p.Y*s.Size + p.X
}

// DroneTile returns the tile under the drone.
func (s *State) DroneTile() *Tile {
	return &s.Grid[s.Index(s.Drone)]
}

// Expand grows the grid by one row and one column. Existing tiles keep
// their row and column.
func (s *State) Expand() error {
	if s.Size >= s.MaxSize {
		return ErrAtMaxSize
	}
	oldSize := s.Size
	newSize := oldSize + 1
	grid := make([]Tile, newSize*newSize)
	for i, t := range s.Grid {
		row, col := i/oldSize, i%oldSize
		grid[row*newSize+col] = t
	}
	s.Grid = grid
	s.Size = newSize
	return nil
}

func (s *State) AddItem(item string, amount int) {
	if amount <= 0 || item == "" {
		return
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	s.Inventory[item] += amount
}

func (s *State) ConsumeItem(item string, amount int) bool {
	if amount <= 0 || item == "" || s.Inventory == nil {
		return false
	}
	current := s.Inventory[item]
	if current < amount {
		return false
	}
	s.Inventory[item] = current - amount
	return true
}

func (s State) UnlockedList() []CropType {
	out := make([]CropType, 0, len(s.Unlocked))
	for crop, ok := range s.Unlocked {
		if ok {
			out = append(out, crop)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Check verifies the structural invariants.
func (s State) Check() error {
	if s.Size < 1 || (s.MaxSize > 0 && s.Size > s.MaxSize) {
		return fmt.Errorf("%w: size %d", ErrInvalidSnapshot, s.Size)
	}
	if len(s.Grid) != s.Size*s.Size {
		return fmt.Errorf("%w: grid has %d tiles for size %d", ErrInvalidSnapshot, len(s.Grid), s.Size)
	}
	if !s.InBounds(s.Drone.X, s.Drone.Y) {
		return fmt.Errorf("%w: drone at (%d, %d)", ErrInvalidSnapshot, s.Drone.X, s.Drone.Y)
	}
	if s.Money < 0 {
		return fmt.Errorf("%w: negative money", ErrInvalidSnapshot)
	}
	for item, n := range s.Inventory {
		if n < 0 {
			return fmt.Errorf("%w: negative %s", ErrInvalidSnapshot, item)
		}
	}
	for i, t := range s.Grid {
		if !t.Valid() {
			return fmt.Errorf("%w: tile %d", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// CheckCatalog rejects crop ids the catalog does not define, on tiles or in
// the unlocked set. Such a tile could never ripen.
func (s State) CheckCatalog(c Catalog) error {
	for crop := range s.Unlocked {
		if !c.IsCrop(crop) {
			return fmt.Errorf("%w: unknown unlocked crop %q", ErrInvalidSnapshot, crop)
		}
	}
	for i, t := range s.Grid {
		if t.HasCrop && !c.IsCrop(t.CropType) {
			return fmt.Errorf("%w: tile %d has unknown crop %q", ErrInvalidSnapshot, i, t.CropType)
		}
	}
	return nil
}

func (s State) String() string {
	inv, _ := json.Marshal(s.Inventory)
	return fmt.Sprintf("Farm(money=$%d, size=%dx%d, inventory=%s)", s.Money, s.Size, s.Size, inv)
}
