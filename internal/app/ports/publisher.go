package ports

import "dronefarm/internal/domain/farm"

// FarmPublisher receives a detached snapshot after every farm mutation.
type FarmPublisher interface {
	Publish(snap farm.Snapshot)
}
