package farm

// Snapshot is a detached copy of the farm, safe to hand to readers and to
// serialize.
type Snapshot struct {
	Grid          []Tile         `json:"grid"`
	Size          int            `json:"size"`
	MaxSize       int            `json:"max_size"`
	DronePosition Position       `json:"drone_position"`
	Inventory     map[string]int `json:"inventory"`
	Money         int64          `json:"money"`
	UnlockedCrops []CropType     `json:"unlocked_crops"`
}

func (s State) Snapshot() Snapshot {
	grid := make([]Tile, len(s.Grid))
	for i, t := range s.Grid {
		grid[i] = t.clone()
	}
	inv := make(map[string]int, len(s.Inventory))
	for k, v := range s.Inventory {
		inv[k] = v
	}
	return Snapshot{
		Grid:          grid,
		Size:          s.Size,
		MaxSize:       s.MaxSize,
		DronePosition: s.Drone,
		Inventory:     inv,
		Money:         s.Money,
		UnlockedCrops: s.UnlockedList(),
	}
}

// FromSnapshot rebuilds a state and rejects snapshots that break the grid,
// drone, balance or tile invariants. A zero MaxSize falls back to the given
// default.
func FromSnapshot(snap Snapshot, defaultMaxSize int) (State, error) {
	maxSize := snap.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	st := State{
		Grid:      make([]Tile, len(snap.Grid)),
		Size:      snap.Size,
		MaxSize:   maxSize,
		Drone:     snap.DronePosition,
		Inventory: make(map[string]int, len(snap.Inventory)),
		Money:     snap.Money,
		Unlocked:  make(map[CropType]bool, len(snap.UnlockedCrops)),
	}
	for i, t := range snap.Grid {
		st.Grid[i] = t.clone()
	}
	for k, v := range snap.Inventory {
		st.Inventory[k] = v
	}
	for _, crop := range snap.UnlockedCrops {
		st.Unlocked[crop] = true
	}
	if err := st.Check(); err != nil {
		return State{}, err
	}
	return st, nil
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Grid != nil {
		out.Grid = make([]Tile, len(s.Grid))
		for i, t := range s.Grid {
			out.Grid[i] = t.clone()
		}
	}
	if s.Inventory != nil {
		out.Inventory = make(map[string]int, len(s.Inventory))
		for k, v := range s.Inventory {
			out.Inventory[k] = v
		}
	}
	if s.UnlockedCrops != nil {
		out.UnlockedCrops = append([]CropType(nil), s.UnlockedCrops...)
	}
	return out
}
