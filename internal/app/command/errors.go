package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand        = errors.New("unknown command")
	ErrOutOfBounds           = errors.New("coordinates out of bounds")
	ErrAlreadyPlowed         = errors.New("tile already plowed")
	ErrCropLocked            = errors.New("crop locked")
	ErrNoSeeds               = errors.New("no seeds")
	ErrTileNotPlantable      = errors.New("tile not plantable")
	ErrNoReadyCrop           = errors.New("no ready crop")
	ErrMaxSize               = errors.New("farm at max size")
	ErrUnknownItem           = errors.New("unknown item")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnknownCrop           = errors.New("unknown crop")
	ErrPrerequisiteLocked    = errors.New("prerequisite crop locked")
)

// RejectedError carries the player-facing text of a failed precondition.
type RejectedError struct {
	Err  error
	Text string
}

func (e *RejectedError) Error() string {
	return e.Err.Error()
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

func reject(err error, format string, args ...any) error {
	return &RejectedError{Err: err, Text: fmt.Sprintf(format, args...)}
}

func rejectionText(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) && rej != nil {
		return rej.Text
	}
	return err.Error()
}
