package marionette

import (
	"fmt"
	"iter"
	"sort"
)

// Graph owns every node of a puppet in an arena addressed by stable NodeIDs.
// Parent/child relations are stored as ID lists, so the structure cannot
// form ownership cycles; SetParent's reachability check is the only cycle
// guard the runtime needs.
//
// The graph is structurally immutable during playback by convention: the
// mutators exist for load-time assembly and editing between frames, not for
// use mid-pipeline.
type Graph struct {
	root   NodeID
	nodes  map[NodeID]*Node
	nextID NodeID
}

// NewGraph creates a graph holding a single root transform node.
func NewGraph() *Graph {
	g := &Graph{
		nodes:  make(map[NodeID]*Node),
		nextID: 1,
	}
	root := NewTransformNode("root")
	root.ID = g.nextID
	g.nextID++
	g.nodes[root.ID] = root
	g.root = root.ID
	return g
}

// Root returns the ID of the root node.
func (g *Graph) Root() NodeID {
	return g.root
}

// Node returns the node with the given ID, or ErrNotFound.
func (g *Graph) Node(id NodeID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return n, nil
}

// MustNode returns the node with the given ID and panics if it is absent.
// For use where the ID is known valid (loader-validated references).
func (g *Graph) MustNode(id NodeID) *Node {
	n, ok := g.nodes[id]
	if !ok {
		panic(fmt.Sprintf("marionette: no node with ID %d", id))
	}
	return n
}

// Len returns the number of nodes in the graph, including the root.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddNode inserts node as the last child of parent and returns its ID.
// If node.ID is zero an ID is assigned; a caller-supplied ID (as used by the
// document loader) is kept and must be unique. Fails with ErrNotFound if
// parent is absent.
func (g *Graph) AddNode(parent NodeID, node *Node) (NodeID, error) {
	p, ok := g.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("parent node %d: %w", parent, ErrNotFound)
	}
	if node.ID == 0 {
		node.ID = g.nextID
	} else if _, dup := g.nodes[node.ID]; dup {
		panic(fmt.Sprintf("marionette: duplicate node ID %d", node.ID))
	}
	if node.ID >= g.nextID {
		g.nextID = node.ID + 1
	}
	node.parent = parent
	g.nodes[node.ID] = node
	p.children = append(p.children, node.ID)
	g.markSubtreeDirty(node)
	return node.ID, nil
}

// RemoveNode detaches the node from its parent and removes it together with
// its whole subtree. Fails with ErrNotFound if the ID is absent. The root
// cannot be removed.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	if id == g.root {
		return fmt.Errorf("marionette: cannot remove the root node")
	}
	parent := g.nodes[n.parent]
	parent.children = removeID(parent.children, id)
	g.removeSubtree(n)
	return nil
}

func (g *Graph) removeSubtree(n *Node) {
	for _, c := range n.children {
		g.removeSubtree(g.nodes[c])
	}
	delete(g.nodes, n.ID)
}

// SetParent moves the node to the end of newParent's child list. Fails with
// ErrCycle if newParent is the node itself or one of its descendants; the
// graph is left unchanged on failure.
func (g *Graph) SetParent(id, newParent NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	np, ok := g.nodes[newParent]
	if !ok {
		return fmt.Errorf("parent node %d: %w", newParent, ErrNotFound)
	}
	if id == g.root {
		return fmt.Errorf("marionette: cannot reparent the root node")
	}
	// Walk up from the prospective parent; hitting id means id is an
	// ancestor of newParent, so the move would create a cycle.
	for p := newParent; p != 0; p = g.nodes[p].parent {
		if p == id {
			return fmt.Errorf("node %d under %d: %w", id, newParent, ErrCycle)
		}
	}
	old := g.nodes[n.parent]
	old.children = removeID(old.children, id)
	n.parent = newParent
	np.children = append(np.children, id)
	g.markSubtreeDirty(n)
	return nil
}

// WorldTransform returns the node's world affine matrix: the composition of
// local transforms along the path from the root. The result is cached and
// invalidated whenever the node or any ancestor changes this frame.
func (g *Graph) WorldTransform(id NodeID) ([6]float64, error) {
	n, ok := g.nodes[id]
	if !ok {
		return identityTransform, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return g.worldTransform(n), nil
}

// worldTransform lazily recomputes the node's cached world state. The cache
// is valid only while the node is clean AND its parent's world has not been
// recomputed since the cache was taken: revision stamps catch ancestor
// motion even after the ancestor's own dirty flag has been cleared by an
// earlier query.
func (g *Graph) worldTransform(n *Node) [6]float64 {
	if n.ID == g.root {
		if n.transformDirty {
			n.world = frameLocalTransform(n)
			n.worldOpacity = n.FrameOpacity()
			n.worldZSort = n.FrameZSort()
			n.transformDirty = false
			n.worldRev++
		}
		return n.world
	}
	parent := g.nodes[n.parent]
	pw := g.worldTransform(parent)
	if n.transformDirty || n.parentRev != parent.worldRev {
		n.world = multiplyAffine(pw, frameLocalTransform(n))
		n.worldOpacity = parent.worldOpacity * n.FrameOpacity()
		n.worldZSort = parent.worldZSort + n.FrameZSort()
		n.transformDirty = false
		n.parentRev = parent.worldRev
		n.worldRev++
	}
	return n.world
}

// resolveTransforms recomputes every node's world transform, opacity, and
// accumulated sort key top-down, parents before children, so that a
// parent's physics or parameter motion propagates to its subtree.
func (g *Graph) resolveTransforms() {
	g.resolveFrom(g.nodes[g.root], identityTransform, 1, 0, 0, false)
}

func (g *Graph) resolveFrom(n *Node, parentTransform [6]float64, parentOpacity, parentZSort float64, parentRev uint64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed || n.parentRev != parentRev
	if recompute {
		n.world = multiplyAffine(parentTransform, frameLocalTransform(n))
		n.worldOpacity = parentOpacity * n.FrameOpacity()
		n.worldZSort = parentZSort + n.FrameZSort()
		n.transformDirty = false
		n.parentRev = parentRev
		n.worldRev++
	}
	for _, c := range n.children {
		g.resolveFrom(g.nodes[c], n.world, n.worldOpacity, n.worldZSort, n.worldRev, recompute)
	}
}

// markAllDirty flags every node for world transform recomputation.
func (g *Graph) markAllDirty() {
	for _, n := range g.nodes {
		n.transformDirty = true
	}
}

// markSubtreeDirty flags the node and all its descendants.
func (g *Graph) markSubtreeDirty(n *Node) {
	n.transformDirty = true
	for _, c := range n.children {
		g.markSubtreeDirty(g.nodes[c])
	}
}

// sortedChildren returns n's children in paint order: insertion order,
// stable-sorted by the current frame's ZSort key so that equal keys keep
// their stored order. The slice is a reused per-node buffer.
func (g *Graph) sortedChildren(n *Node) []NodeID {
	n.sortedKids = append(n.sortedKids[:0], n.children...)
	sort.SliceStable(n.sortedKids, func(i, j int) bool {
		return g.nodes[n.sortedKids[i]].FrameZSort() < g.nodes[n.sortedKids[j]].FrameZSort()
	})
	return n.sortedKids
}

// DrawOrder produces a lazy, restartable sequence of node IDs in paint
// order: parent before children, children in their stored order unless
// ZSort overrides it. Composite nodes are the exception: their children are
// drawn to an offscreen target first, so they are yielded before the
// composite node itself.
func (g *Graph) DrawOrder() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		g.drawOrderFrom(g.nodes[g.root], yield)
	}
}

func (g *Graph) drawOrderFrom(n *Node, yield func(NodeID) bool) bool {
	if n.Type == NodeTypeComposite {
		for _, c := range g.sortedChildren(n) {
			if !g.drawOrderFrom(g.nodes[c], yield) {
				return false
			}
		}
		return yield(n.ID)
	}
	if !yield(n.ID) {
		return false
	}
	for _, c := range g.sortedChildren(n) {
		if !g.drawOrderFrom(g.nodes[c], yield) {
			return false
		}
	}
	return true
}

// All iterates over every node in pre-order, parents before children.
func (g *Graph) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		g.allFrom(g.nodes[g.root], yield)
	}
}

func (g *Graph) allFrom(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if !g.allFrom(g.nodes[c], yield) {
			return false
		}
	}
	return true
}

// removeID removes the first occurrence of id from ids, preserving order.
func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			copy(ids[i:], ids[i+1:])
			return ids[:len(ids)-1]
		}
	}
	return ids
}
