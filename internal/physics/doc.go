// Package physics resolves pairwise particle interactions for one tick.
//
// [Resolver] walks the neighbour pairs reported by a [spatial.Grid] and
// evaluates each unordered pair exactly once (lower id first):
//
//   - collisions: positional separation, restitution impulse along the contact
//     normal and a tangential friction impulse; hard hits blend colours and
//     spin both particles up
//   - magnetism: inverse-square attraction or repulsion between particles of
//     the same collision group
//
// Every pair reads the particle slice as it was at the start of the pass and
// writes into a per-index delta buffer. The deltas are applied once all pairs
// are done, so the visiting order of pairs does not change the outcome and no
// two particles are ever mutated through aliased references.
package physics
