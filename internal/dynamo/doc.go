// Package dynamo provides the primitives shared by every layer of the particle
// simulation.
//
// The package defines the types that cross package boundaries:
//
//   - [Vec3]: 3D vector (an alias of mgl64.Vec3)
//   - [Bounds]: axis-aligned simulation volume
//   - [Sprite]: one renderable particle in a post-tick snapshot
//   - [Snapshot]: the immutable particle list handed to renderers
//
// # Example
//
//	eng, err := sim.New(dynamo.Bounds{Min: dynamo.Vec3{-2, -2, -2}, Max: dynamo.Vec3{2, 2, 2}})
//	if err != nil {
//	    return err
//	}
//	eng.Trigger(emitter.Success, 1, emitter.Flags{Collisions: true, Magnetism: true})
//	snap := eng.Advance(1.0 / 60)
//
// # Thread Safety
//
// Snapshots are plain copies and may be shared freely once returned. Nothing
// else in this package holds mutable state.
package dynamo
