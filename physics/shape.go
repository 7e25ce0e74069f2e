package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrInvalidShape is returned for shapes with non-positive or non-finite dimensions.
var ErrInvalidShape = errors.New("invalid shape")

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeBox:
		return "box"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape describes the collision geometry of an object.
type Shape struct {
	Kind       ShapeKind
	Radius     float64
	HalfWidth  float64
	HalfHeight float64
}

// Circle returns a ball shape.
func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Box returns a cuboid shape with the given half extents.
func Box(halfWidth, halfHeight float64) Shape {
	return Shape{Kind: ShapeBox, HalfWidth: halfWidth, HalfHeight: halfHeight}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate checks the shape dimensions.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeCircle:
		if !positive(s.Radius) {
			return fmt.Errorf("%w: circle radius %v", ErrInvalidShape, s.Radius)
		}
	case ShapeBox:
		if !positive(s.HalfWidth) || !positive(s.HalfHeight) {
			return fmt.Errorf("%w: box half extents %vx%v", ErrInvalidShape, s.HalfWidth, s.HalfHeight)
		}
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidShape, s.Kind)
	}
	return nil
}

func (s Shape) build(body *cp.Body) *cp.Shape {
	if s.Kind == ShapeBox {
		return cp.NewBox(body, s.HalfWidth*2, s.HalfHeight*2, 0)
	}
	return cp.NewCircle(body, s.Radius, cp.Vector{})
}

// Pose is the position and orientation of an object.
type Pose struct {
	Position cp.Vector
	Angle    float64
}

// Translate returns the pose moved by delta with its orientation unchanged.
func (p Pose) Translate(delta cp.Vector) Pose {
	return Pose{Position: p.Position.Add(delta), Angle: p.Angle}
}

func (p Pose) valid() bool {
	for _, v := range []float64{p.Position.X, p.Position.Y, p.Angle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
