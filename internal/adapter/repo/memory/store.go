package memory

import (
	"sync"

	"dronefarm/internal/app/ports"
)

type Store struct {
	mu    sync.RWMutex
	saves map[string]ports.SaveRecord
}

func NewStore() *Store {
	return &Store{
		saves: make(map[string]ports.SaveRecord),
	}
}
