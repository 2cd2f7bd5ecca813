package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshbake/pkg/atlas"
)

var (
	ErrInsufficientSelection  = errors.New("at least two objects are required")
	ErrMissingRenderData      = errors.New("object has no mesh geometry or material")
	ErrMissingRequiredChannel = errors.New("required channel missing")
	ErrTooManyUniqueSources   = errors.New("too many unique meshes")
	ErrPackingOverflow        = atlas.ErrPackingOverflow
	ErrUnsupportedChannelKind = errors.New("unsupported channel kind")
	ErrDivergentMaterial      = errors.New("shared mesh has different materials")
)

// Error carries the stage and, where known, the object and channel a bake
// failed on. Use errors.Is against the sentinels above.
type Error struct {
	State   State
	Object  string
	Channel ChannelKind
	Err     error
}

func (e *Error) Error() string {
	msg := "bake: " + e.State.String()
	if e.Object != "" {
		msg += fmt.Sprintf(": object %q", e.Object)
	}
	if e.Channel != 0 {
		msg += ": channel " + e.Channel.String()
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
