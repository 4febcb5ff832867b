package geometry

import (
	"github.com/spaghettifunk/prisma/engine/math"
)

// Shape names resolvable in the default store.
const (
	ShapeBox      = "box"
	ShapeGrid     = "grid"
	ShapeSphere   = "sphere"
	ShapeCylinder = "cylinder"
	ShapeCone     = "cone"
	ShapeWedge    = "wedge"
	ShapePyramid  = "pyramid"
	ShapeDiamond  = "diamond"
	ShapeTriPrism = "triPrism"
)

// NewShapesStore builds the store holding every primitive the shapes
// scene draws, each painted in its fixed color.
func NewShapesStore() *Store {
	return NewBuilder("shapeGeo").
		Add(ShapeBox, NewBox(1, 1, 1), math.NewVec4(0.184, 0.310, 0.310, 1)).        // dark slate gray
		Add(ShapeGrid, NewGrid(75, 75, 60, 20), math.NewVec4(0.133, 0.545, 0.133, 1)). // forest green
		Add(ShapeSphere, NewSphere(0.5, 20, 20), math.NewVec4(0.863, 0.078, 0.235, 1)). // crimson
		Add(ShapeCylinder, NewCylinder(0.5, 0.4, 3.0, 20, 20), math.NewVec4(0.678, 1.0, 0.184, 1)). // green yellow
		Add(ShapeCone, NewCone(0.5, 1.0, 10, 10), math.NewVec4(1, 0, 0, 1)).         // red
		Add(ShapeWedge, NewWedge(2, 2, 2), math.NewVec4(1, 1, 0, 1)).                // yellow
		Add(ShapePyramid, NewPyramid(2, 2, 2), math.NewVec4(1.0, 0.855, 0.725, 1)).  // peach puff
		Add(ShapeDiamond, NewDiamond(2, 2, 4), math.NewVec4(0.502, 0, 0.502, 1)).    // purple
		Add(ShapeTriPrism, NewTriPrism(2, 2, 2), math.NewVec4(1.0, 0.647, 0, 1)).    // orange
		Build()
}
