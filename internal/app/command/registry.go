package command

import (
	"time"

	"dronefarm/internal/domain/farm"
)

type Spec struct {
	Name    Name
	Mutates bool
	Handler Handler
}

type Handler interface {
	Precheck(cc *Context) error
	Apply(cc *Context) Result
}

type BaseHandler struct{}

func (BaseHandler) Precheck(*Context) error { return nil }

// Context is what a handler sees while the engine lock is held.
type Context struct {
	State   *farm.State
	Catalog farm.Catalog
	Req     Request
	Now     time.Time
}

func commandRegistry() map[Name]Spec {
	return map[Name]Spec{
		Move:     {Name: Move, Mutates: true, Handler: moveHandler{}},
		Plow:     {Name: Plow, Mutates: true, Handler: plowHandler{}},
		Plant:    {Name: Plant, Mutates: true, Handler: plantHandler{}},
		Harvest:  {Name: Harvest, Mutates: true, Handler: harvestHandler{}},
		Scan:     {Name: Scan, Handler: scanHandler{}},
		Position: {Name: Position, Handler: positionHandler{}},
		Expand:   {Name: Expand, Mutates: true, Handler: expandHandler{}},
		Buy:      {Name: Buy, Mutates: true, Handler: buyHandler{}},
		Sell:     {Name: Sell, Mutates: true, Handler: sellHandler{}},
	}
}

// SupportedNames lists the commands in the order scripts see them.
func SupportedNames() []Name {
	return []Name{Move, Plow, Plant, Harvest, Scan, Position, Expand, Buy, Sell}
}
