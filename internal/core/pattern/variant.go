package pattern

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownVariant indicates a pattern-set name that is not in the table.
var ErrUnknownVariant = errors.New("unknown variant")

// Variant names a pattern-set configuration: sequence, per-pattern geometry and timing.
type Variant struct {
	Name            string
	Sequence        []ID
	Geometry        map[ID]Geometry
	Figure8         Orientation
	DiamondStart    Vertex
	PatternDuration time.Duration
	FastMultiplier  float64
}

const (
	VariantClassic  = "classic"
	VariantEysee    = "eysee"
	VariantExtended = "extended"

	// DefaultVariant is used when no variant is configured.
	DefaultVariant = VariantEysee
)

// Pixel margins removed from the viewport before ratios apply.
const (
	marginX = 80
	marginY = 160
)

var eyseeGeometry = map[ID]Geometry{
	// Frame is 90% of the inset area; radius is half the frame.
	Circle: {MarginX: marginX, MarginY: marginY, RatioX: 0.45, RatioY: 0.45},
	// Frame is 160% x 90% of the inset area; lobe radii 0.8 and 0.45 of the frame.
	Figure8:    {MarginX: marginX, MarginY: marginY, RatioX: 1.28, RatioY: 0.405},
	Vertical:   {MarginX: marginX, MarginY: marginY, RatioX: 0, RatioY: 0.5},
	Horizontal: {MarginX: marginX, MarginY: marginY, RatioX: 0.5, RatioY: 0},
	Diamond:    {MarginX: marginX, MarginY: marginY, RatioX: 0.405, RatioY: 0.405},
}

var variants = map[string]Variant{
	VariantClassic: {
		Name:     VariantClassic,
		Sequence: []ID{Circle, Figure8, Circle, Figure8},
		Geometry: map[ID]Geometry{
			Circle:  {RatioX: 0.25, RatioY: 0.25, Square: true},
			Figure8: {RatioX: 0.2, RatioY: 0.2, Square: true},
		},
		Figure8:         OrientationHorizontal,
		DiamondStart:    VertexTop,
		PatternDuration: 15 * time.Second,
		FastMultiplier:  1,
	},
	VariantEysee: {
		Name:            VariantEysee,
		Sequence:        []ID{Figure8, Circle, Vertical, Diamond},
		Geometry:        eyseeGeometry,
		Figure8:         OrientationVertical,
		DiamondStart:    VertexTop,
		PatternDuration: 20 * time.Second,
		FastMultiplier:  2,
	},
	VariantExtended: {
		Name:            VariantExtended,
		Sequence:        []ID{Figure8, Circle, Vertical, Horizontal, Diamond},
		Geometry:        eyseeGeometry,
		Figure8:         OrientationVertical,
		DiamondStart:    VertexRight,
		PatternDuration: 20 * time.Second,
		FastMultiplier:  2.5,
	},
}

// LookupVariant returns the named variant. Unknown names return the default variant and ErrUnknownVariant.
func LookupVariant(name string) (Variant, error) {
	if variant, ok := variants[name]; ok {
		return variant, nil
	}
	return variants[DefaultVariant], fmt.Errorf("lookup variant %q: %w", name, ErrUnknownVariant)
}

// VariantNames lists the known variants, default first.
func VariantNames() []string {
	return []string{VariantEysee, VariantClassic, VariantExtended}
}

// Registry builds the formula table of the variant for the given device area factor.
func (variant Variant) Registry(scale float64) *Registry {
	registry := NewRegistry()
	for id, geometry := range variant.Geometry {
		geometry = geometry.WithScale(scale)
		switch id {
		case Circle:
			registry.Register(id, CircleFunc(geometry))
		case Figure8:
			registry.Register(id, Figure8Func(geometry, variant.Figure8))
		case Vertical:
			registry.Register(id, VerticalFunc(geometry))
		case Horizontal:
			registry.Register(id, HorizontalFunc(geometry))
		case Diamond:
			registry.Register(id, DiamondFunc(geometry, variant.DiamondStart))
		}
	}
	return registry
}

// Multiplier returns the speed multiplier for fast or normal play.
func (variant Variant) Multiplier(fast bool) float64 {
	if !fast || variant.FastMultiplier <= 0 {
		return 1
	}
	return variant.FastMultiplier
}

// Duration returns the wall-clock length of one pattern at the given multiplier.
func (variant Variant) Duration(multiplier float64) time.Duration {
	if multiplier <= 0 {
		multiplier = 1
	}
	return time.Duration(float64(variant.PatternDuration) / multiplier)
}
