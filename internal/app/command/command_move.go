package command

import "dronefarm/internal/domain/farm"

type moveHandler struct{}

func (moveHandler) Precheck(cc *Context) error {
	if !cc.State.InBounds(cc.Req.X, cc.Req.Y) {
		return reject(ErrOutOfBounds, "Invalid coordinates")
	}
	return nil
}

func (moveHandler) Apply(cc *Context) Result {
	cc.State.Drone = farm.Position{X: cc.Req.X, Y: cc.Req.Y}
	return ok(true, "Moved to (%d, %d)", cc.Req.X, cc.Req.Y)
}

type positionHandler struct{ BaseHandler }

func (positionHandler) Apply(cc *Context) Result {
	p := cc.State.Drone
	return ok(p, "Drone at (%d, %d)", p.X, p.Y)
}

type expandHandler struct{}

func (expandHandler) Precheck(cc *Context) error {
	if cc.State.Size >= cc.State.MaxSize {
		return reject(ErrMaxSize, "Farm is already at maximum size (%dx%d)", cc.State.MaxSize, cc.State.MaxSize)
	}
	return nil
}

func (expandHandler) Apply(cc *Context) Result {
	// Drone coordinates stay valid: the grid only grows.
	_ = cc.State.Expand()
	return ok(true, "Farm expanded to %dx%d", cc.State.Size, cc.State.Size)
}
