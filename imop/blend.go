package imop

import (
	"github.com/esimov/seamcarve/utils"
	"github.com/pkg/errors"
)

const (
	Darken   = "darken"
	Lighten  = "lighten"
	Multiply = "multiply"
	Screen   = "screen"
	Overlay  = "overlay"
)

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	bModes := []string{Darken, Lighten, Multiply, Screen, Overlay}

	if !utils.Contains(bModes, opType) {
		return errors.Errorf("unsupported blend mode: %s", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

// mix blends a source and a backdrop color component.
func (o *Blend) mix(cs, cb float64) float64 {
	switch o.OpType {
	case Darken:
		return utils.Min(cs, cb)
	case Lighten:
		return utils.Max(cs, cb)
	case Multiply:
		return cs * cb
	case Screen:
		return cs + cb - cs*cb
	case Overlay:
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return 1 - 2*(1-cs)*(1-cb)
	}
	return cs
}
