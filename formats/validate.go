package formats

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is the sentinel every validation failure wraps; check
// with errors.Is. The concrete error is a *ValidationError carrying the
// offending location.
var ErrInvalidDocument = errors.New("formats: invalid document")

// ValidationError reports one structural problem in a document. Path
// locates the problem ("/head/eye" for nodes, "params/blink" for
// parameters).
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("formats: invalid document: %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

func invalid(path, format string, args ...any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a document's structural integrity: unique node IDs,
// well-formed meshes, resolvable mask and binding references, sorted
// normalized axis points, and grid dimensions matching the axes. Build
// calls it before linking; the runtime relies on its guarantees and does
// not re-check.
func Validate(doc *Document) error {
	nodes := make(map[uint32]*NodeDoc, nodeCount(doc.Nodes))

	err := walkNodes(doc.Nodes, "", func(path string, n *NodeDoc) error {
		if n.ID < 2 {
			return invalid(path, "node ID %d is reserved, IDs start at 2", n.ID)
		}
		if _, dup := nodes[n.ID]; dup {
			return invalid(path, "duplicate node ID %d", n.ID)
		}
		nodes[n.ID] = n

		switch n.Type {
		case "node", "part", "composite", "custom":
		default:
			return invalid(path, "unknown node type %q", n.Type)
		}
		if n.Type == "part" && n.Mesh == nil {
			return invalid(path, "part has no mesh")
		}
		if n.Mesh != nil {
			if err := validateMesh(path, n.Mesh); err != nil {
				return err
			}
		}
		if n.Blend != "" {
			if _, ok := blendModes[n.Blend]; !ok {
				return invalid(path, "unknown blend mode %q", n.Blend)
			}
		}
		if n.Physics != nil {
			if err := validatePhysics(path, n.Physics, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Mask sources must exist and be drawable; a second pass because the
	// source may appear later in the tree.
	err = walkNodes(doc.Nodes, "", func(path string, n *NodeDoc) error {
		for _, m := range n.Masks {
			src, ok := nodes[m.Source]
			if !ok {
				return invalid(path, "mask source %d does not exist", m.Source)
			}
			if src.Type != "part" {
				return invalid(path, "mask source %d is not a part", m.Source)
			}
			switch m.Mode {
			case "", "mask", "dodge":
			default:
				return invalid(path, "unknown mask mode %q", m.Mode)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(doc.Params))
	for i := range doc.Params {
		p := &doc.Params[i]
		path := "params/" + p.Name
		if p.Name == "" {
			return invalid(fmt.Sprintf("params[%d]", i), "parameter has no name")
		}
		if seen[p.Name] {
			return invalid(path, "duplicate parameter name")
		}
		seen[p.Name] = true
		if err := validateParam(path, p, nodes); err != nil {
			return err
		}
	}
	return nil
}

func validateMesh(path string, m *MeshDoc) error {
	if len(m.Verts) == 0 || len(m.Verts)%2 != 0 {
		return invalid(path, "mesh verts length %d is not a positive x,y pair list", len(m.Verts))
	}
	nv := len(m.Verts) / 2
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Verts) {
		return invalid(path, "mesh has %d UV components for %d vertex components", len(m.UVs), len(m.Verts))
	}
	if len(m.Indices)%3 != 0 {
		return invalid(path, "mesh index count %d is not a triangle list", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= nv {
			return invalid(path, "mesh index %d out of range (%d vertices)", idx, nv)
		}
	}
	return nil
}

func validatePhysics(path string, ph *PhysicsDoc, doc *Document) error {
	switch ph.MapMode {
	case "", "xy", "angleLength":
	default:
		return invalid(path, "unknown physics map mode %q", ph.MapMode)
	}
	if ph.MapMode != "" {
		if ph.Param == "" {
			return invalid(path, "physics map mode %q needs a target param", ph.MapMode)
		}
		found := false
		for i := range doc.Params {
			if doc.Params[i].Name == ph.Param {
				found = true
				break
			}
		}
		if !found {
			return invalid(path, "physics target param %q does not exist", ph.Param)
		}
	}
	if ph.Stiffness < 0 || ph.Damping < 0 {
		return invalid(path, "physics stiffness and damping must be non-negative")
	}
	return nil
}

func validateParam(path string, p *ParamDoc, nodes map[uint32]*NodeDoc) error {
	if p.Max[0] <= p.Min[0] {
		return invalid(path, "max.x must exceed min.x")
	}
	if p.IsVec2 && p.Max[1] <= p.Min[1] {
		return invalid(path, "max.y must exceed min.y")
	}
	if err := validateAxis(path, "axisX", p.AxisX); err != nil {
		return err
	}
	if p.IsVec2 {
		if err := validateAxis(path, "axisY", p.AxisY); err != nil {
			return err
		}
	} else if len(p.AxisY) != 0 {
		return invalid(path, "axisY on a 1D parameter")
	}

	rows := 1
	if p.IsVec2 {
		rows = len(p.AxisY)
	}
	cols := len(p.AxisX)

	for i := range p.Bindings {
		b := &p.Bindings[i]
		bpath := fmt.Sprintf("%s/bindings[%d]", path, i)
		n, ok := nodes[b.Node]
		if !ok {
			return invalid(bpath, "target node %d does not exist", b.Node)
		}
		target, ok := bindTargets[b.Target]
		if !ok {
			return invalid(bpath, "unknown binding target %q", b.Target)
		}
		switch b.Mode {
		case "", "linear", "nearest", "eased":
		default:
			return invalid(bpath, "unknown interpolation mode %q", b.Mode)
		}
		if b.Mode == "eased" {
			if _, ok := easings[b.Easing]; !ok {
				return invalid(bpath, "unknown easing %q", b.Easing)
			}
		}

		if target == targetDeform {
			if n.Mesh == nil {
				return invalid(bpath, "deform binding on node %d without a mesh", b.Node)
			}
			nv := len(n.Mesh.Verts) / 2
			if len(b.Deform) != rows {
				return invalid(bpath, "deform grid has %d rows, axis has %d points", len(b.Deform), rows)
			}
			for y, row := range b.Deform {
				if len(row) != cols {
					return invalid(bpath, "deform row %d has %d columns, axis has %d points", y, len(row), cols)
				}
				for x, cell := range row {
					if len(cell) != nv {
						return invalid(bpath, "deform cell (%d,%d) has %d offsets for %d vertices", x, y, len(cell), nv)
					}
				}
			}
			continue
		}

		if len(b.Values) != rows {
			return invalid(bpath, "value grid has %d rows, axis has %d points", len(b.Values), rows)
		}
		for y, row := range b.Values {
			if len(row) != cols {
				return invalid(bpath, "value row %d has %d columns, axis has %d points", y, len(row), cols)
			}
		}
	}
	return nil
}

// validateAxis checks that axis points are normalized, strictly increasing,
// and include both endpoints.
func validateAxis(path, name string, points []float64) error {
	if len(points) < 2 {
		return invalid(path, "%s needs at least 2 points", name)
	}
	if points[0] != 0 || points[len(points)-1] != 1 {
		return invalid(path, "%s must start at 0 and end at 1", name)
	}
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return invalid(path, "%s is not strictly increasing at index %d", name, i)
		}
	}
	return nil
}
