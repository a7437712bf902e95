package marionette

// Mesh is the base geometry of a Part: an ordered sequence of 2D vertices,
// texture coordinates, and a fixed triangulation. Meshes are load-time
// authoritative; per-frame deformation writes to a separate buffer and
// never mutates the base positions.
type Mesh struct {
	Vertices []Vec2   // local-space positions
	UVs      []Vec2   // one per vertex, in [0, 1]
	Indices  []uint16 // triangle list, len % 3 == 0
}

// NewQuadMesh builds a two-triangle quad of the given size with its origin
// at the center. Useful for simple parts, tests, and examples.
func NewQuadMesh(w, h float64) *Mesh {
	hw, hh := w/2, h/2
	return &Mesh{
		Vertices: []Vec2{{-hw, -hh}, {hw, -hh}, {-hw, hh}, {hw, hh}},
		UVs:      []Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Indices:  []uint16{0, 1, 2, 2, 1, 3},
	}
}

// AABB scans the mesh vertices and returns the axis-aligned bounding box in
// local space.
func (m *Mesh) AABB() Rect {
	return computeAABB(m.Vertices)
}

// computeAABB returns the axis-aligned bounding box of the given points.
func computeAABB(verts []Vec2) Rect {
	if len(verts) == 0 {
		return Rect{}
	}
	minX, minY := verts[0].X, verts[0].Y
	maxX, maxY := minX, minY
	for i := 1; i < len(verts); i++ {
		v := verts[i]
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
