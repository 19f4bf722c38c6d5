package command

import (
	"fmt"

	"dronefarm/internal/domain/farm"
)

type plowHandler struct{}

func (plowHandler) Precheck(cc *Context) error {
	if cc.State.DroneTile().IsPlowed {
		return reject(ErrAlreadyPlowed, "This tile is already plowed")
	}
	return nil
}

func (plowHandler) Apply(cc *Context) Result {
	cc.State.DroneTile().IsPlowed = true
	return ok(true, "Successfully plowed tile at %s", at(cc.State.Drone))
}

type plantHandler struct{}

func (plantHandler) Precheck(cc *Context) error {
	crop := farm.CropType(cc.Req.Crop)
	if !cc.State.Unlocked[crop] || !cc.Catalog.IsCrop(crop) {
		return reject(ErrCropLocked, "Cannot plant %s - You need to unlock it first in the Tech Tree!", crop)
	}
	if cc.State.Inventory[crop.SeedItem()] <= 0 {
		return reject(ErrNoSeeds, "Cannot plant %s - No seeds available!", crop)
	}
	tile := cc.State.DroneTile()
	if !tile.IsPlowed || tile.HasCrop {
		return reject(ErrTileNotPlantable, "Failed to plant %s - Make sure the tile is plowed and empty", crop)
	}
	return nil
}

func (plantHandler) Apply(cc *Context) Result {
	crop := farm.CropType(cc.Req.Crop)
	cc.State.ConsumeItem(crop.SeedItem(), 1)
	cc.State.DroneTile().Plant(crop, cc.Now)
	return ok(true, "Successfully planted %s at %s", crop, at(cc.State.Drone))
}

type harvestHandler struct{}

func (harvestHandler) Precheck(cc *Context) error {
	tile := cc.State.DroneTile()
	if !tile.HasCrop || tile.CropState != farm.CropStateReady {
		return reject(ErrNoReadyCrop, "Failed to harvest - No ready crop at %s", at(cc.State.Drone))
	}
	return nil
}

func (harvestHandler) Apply(cc *Context) Result {
	tile := cc.State.DroneTile()
	crop := tile.CropType
	tile.ClearCrop()
	cc.State.AddItem(string(crop), 1)
	return ok(true, "Successfully harvested %s at %s", crop, at(cc.State.Drone))
}

type scanHandler struct{ BaseHandler }

func (scanHandler) Apply(cc *Context) Result {
	status := cc.State.DroneTile().Status()
	return ok(status, "Scan results at %s: %s", at(cc.State.Drone), status)
}

func at(p farm.Position) string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func ok(value any, format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...), Value: value}
}
