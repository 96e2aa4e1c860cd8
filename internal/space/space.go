// Package space provides the spatial side of the simulation: world positions,
// the proximity detector that auto-wires neurons, and the decaying-velocity
// throw used on drag release. Positions are owned by the rendering
// collaborator; this package only reads them through PositionSource, except
// during a throw where it drives them through PositionStore.
package space

import "math"

// Vec3 is a world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Scale returns v scaled by f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

// Length returns the vector's magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PositionSource is the read-only view of entity positions held by the
// rendering collaborator.
type PositionSource interface {
	// Position returns the entity's position, or false if the entity is
	// unknown.
	Position(id int) (Vec3, bool)

	// IDs returns all live entity ids.
	IDs() []int
}

// PositionStore extends PositionSource with mutation, needed by the throw
// integrator which moves an entity between frames.
type PositionStore interface {
	PositionSource
	SetPosition(id int, pos Vec3)
}
