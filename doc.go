// Package marionette is a runtime for animated 2D vector puppets:
// hierarchical rigged characters made of textured mesh parts, posed each
// frame by bounded parameters and by physical simulation of dangling
// elements such as hair and clothing.
//
// The package is renderer-agnostic. Each frame it resolves the node graph,
// parameter bindings, physics, and mesh deformation into a [FrameSnapshot]
// of world transforms, deformed vertex buffers, and blend state; renderer
// backends (see marionette/render) turn snapshots into pixels. The runtime
// itself never touches a graphics API.
//
// # Quick start
//
// Load a puppet with the formats package, then drive it:
//
//	puppet, _, err := formats.BuildFile("mascot.mrnp")
//	if err != nil { ... }
//
//	puppet.SetParameter("head.yaw", marionette.Vec2{X: 0.3})
//	puppet.AdvanceFrame(1.0 / 60.0)
//	snap := puppet.Snapshot()
//	// hand snap to a renderer backend
//
// # Pipeline
//
// [Puppet.AdvanceFrame] runs a fixed, single-threaded sequence: binding
// evaluation, physics integration (sub-stepped under irregular frame
// times), deformation composition, and world transform resolution. A
// puppet instance must not be shared across goroutines; independent
// instances are safe to update in parallel.
//
// # Rigs by hand
//
// Rigs can also be assembled programmatically with [NewGraph],
// [Graph.AddNode], [NewPuppet], [Puppet.AddParameter], and [Puppet.Link];
// the tests in this package are full examples.
package marionette
