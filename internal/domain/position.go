package domain

// Point is a planar coordinate in floor-plan user space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
