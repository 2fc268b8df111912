package view

import "imagestudio/internal/domain"

// Shape is the display box hint for the output panel.
type Shape struct {
	Name string `json:"name"`
	// CSS is a CSS aspect-ratio value.
	CSS string `json:"css"`
	// Cols and Rows size the terminal preview box.
	Cols int `json:"-"`
	Rows int `json:"-"`
}

var squareShape = Shape{Name: "square", CSS: "1 / 1", Cols: 24, Rows: 12}

// ShapeFor maps an aspect ratio to its display shape. Unknown ratios get the
// square shape.
func ShapeFor(r domain.AspectRatio) Shape {
	switch r {
	case domain.AspectSquare:
		return squareShape
	case domain.AspectPortrait3x4:
		return Shape{Name: "portrait-3-4", CSS: "3 / 4", Cols: 24, Rows: 16}
	case domain.AspectLandscape4x3:
		return Shape{Name: "landscape-4-3", CSS: "4 / 3", Cols: 32, Rows: 12}
	case domain.AspectPortrait9x16:
		return Shape{Name: "portrait-9-16", CSS: "9 / 16", Cols: 18, Rows: 16}
	case domain.AspectLandscape16x9:
		return Shape{Name: "video", CSS: "16 / 9", Cols: 40, Rows: 11}
	default:
		return squareShape
	}
}
