package scene

import (
	"github.com/spaghettifunk/prisma/engine/geometry"
)

// Default returns the built-in castle scene: a walled courtyard of
// boxes with corner towers, gate cones, rooftop diamonds, and a
// floating sphere.
func Default() *Scene {
	return &Scene{
		Name: "castle",
		Instances: []Instance{
			{Name: "wall-north", Shape: geometry.ShapeBox, Scale: [3]float32{50, 10, 1}, Translate: [3]float32{0, 5, 25}},
			{Name: "wall-east", Shape: geometry.ShapeBox, Scale: [3]float32{1, 10, 50}, Translate: [3]float32{25, 5, 0}},
			{Name: "wall-west", Shape: geometry.ShapeBox, Scale: [3]float32{1, 10, 50}, Translate: [3]float32{-25, 5, 0}},
			{Name: "wall-south-right", Shape: geometry.ShapeBox, Scale: [3]float32{15, 7, 1}, Translate: [3]float32{17.5, 3.5, -25}},
			{Name: "wall-south-left", Shape: geometry.ShapeBox, Scale: [3]float32{15, 7, 2}, Translate: [3]float32{-17.5, 3.5, -25}},
			{Name: "gate-right", Shape: geometry.ShapeBox, Scale: [3]float32{5, 7, 4}, Translate: [3]float32{4, 3.5, -26}},
			{Name: "gate-left", Shape: geometry.ShapeBox, Scale: [3]float32{5, 7, 4}, Translate: [3]float32{-4, 3.5, -26}},
			{Name: "gate-lintel", Shape: geometry.ShapeBox, Scale: [3]float32{4, 1, 4}, Translate: [3]float32{0, 6.5, -26}},
			{Name: "gate-step", Shape: geometry.ShapeBox, Scale: [3]float32{4, 2, 4}, Translate: [3]float32{0, 1, -26}},
			{Name: "keep", Shape: geometry.ShapeBox, Scale: [3]float32{20, 2, 20}, Translate: [3]float32{0, 1, 0}},
			{Name: "ground", Shape: geometry.ShapeGrid},
			{Name: "ramp", Shape: geometry.ShapeWedge, Translate: [3]float32{0, 1, -11}},
			{Name: "keep-roof", Shape: geometry.ShapePyramid, Scale: [3]float32{7.5, 7.5, 7.5}, Translate: [3]float32{0, 9.5, 0}},
			{Name: "jewel-ne", Shape: geometry.ShapeDiamond, Translate: [3]float32{25, 22, 25}},
			{Name: "jewel-sw", Shape: geometry.ShapeDiamond, Translate: [3]float32{-25, 22, -25}},
			{Name: "jewel-nw", Shape: geometry.ShapeDiamond, Translate: [3]float32{-25, 22, 25}},
			{Name: "jewel-se", Shape: geometry.ShapeDiamond, Translate: [3]float32{25, 22, -25}},
			{Name: "prism-flat", Shape: geometry.ShapeTriPrism, Translate: [3]float32{0, 1, -29}},
			{Name: "prism-tipped", Shape: geometry.ShapeTriPrism, Rotate: [3]float32{1.51, 0, 0}, Translate: [3]float32{0, 1, -23}},
			{Name: "tower-ne", Shape: geometry.ShapeCylinder, Scale: [3]float32{7, 5, 7}, Translate: [3]float32{25, 7.5, 25}},
			{Name: "tower-se", Shape: geometry.ShapeCylinder, Scale: [3]float32{7, 5, 7}, Translate: [3]float32{25, 7.5, -25}},
			{Name: "tower-sw", Shape: geometry.ShapeCylinder, Scale: [3]float32{7, 5, 7}, Translate: [3]float32{-25, 7.5, -25}},
			{Name: "tower-nw", Shape: geometry.ShapeCylinder, Scale: [3]float32{7, 5, 7}, Translate: [3]float32{-25, 7.5, 25}},
			{Name: "gatehouse-right", Shape: geometry.ShapeCylinder, Scale: [3]float32{8, 3, 8}, Translate: [3]float32{7, 4.5, -25}},
			{Name: "gatehouse-left", Shape: geometry.ShapeCylinder, Scale: [3]float32{8, 3, 8}, Translate: [3]float32{-7, 4.5, -25}},
			{Name: "spire-ne", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{25, 17.5, 25}},
			{Name: "spire-sw", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{-25, 17.5, -25}},
			{Name: "spire-se", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{25, 17.5, -25}},
			{Name: "spire-nw", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{-25, 17.5, 25}},
			{Name: "spire-gate-right", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{7, 11.5, -25}},
			{Name: "spire-gate-left", Shape: geometry.ShapeCone, Scale: [3]float32{10, 5, 10}, Translate: [3]float32{-7, 11.5, -25}},
			{Name: "orb", Shape: geometry.ShapeSphere, Scale: [3]float32{2, 2, 2}, Translate: [3]float32{0, 17, 0}},
		},
	}
}
