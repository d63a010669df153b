// Package assembly implements the geometric assembly engine: it fits rigid
// building units into the slots of a prototype topology and reconciles the
// per-slot scale estimates into one consistent unit cell.
//
// # Overview
//
// A framework build runs in four stages:
//
//  1. Matching: [Matcher.Select] assigns one building unit to every slot
//     by shape label, drawing among same-shape candidates with optional
//     weights from an explicit random source.
//  2. Alignment: [Align] superimposes each unit onto its slot. The slot
//     fragment is stretched anisotropically to the unit's size class and
//     the unit is rotated onto it by solving the orthogonal Procrustes
//     problem (rotation only, no reflection).
//  3. Tagging: the slot's connection indices are transferred onto the
//     unit's dummy atoms by nearest-neighbor correspondence, recording
//     which connection site each placeholder occupies.
//  4. Refinement: [Refine] adjusts the global cell scale, seeded by the
//     sum of per-slot estimates, to minimize the mismatch between the
//     connection sites implied by the scaled topology frame and the fixed
//     connection geometry of the rigid units.
//
// # Failure Policy
//
// Stages 1-3 are all-or-nothing: a slot with no shape-compatible
// candidate, a connection-count mismatch, or degenerate fragment geometry
// aborts the whole build with a typed error and no partial [Framework] is
// returned. Refinement never fails; when the iteration budget runs out
// before convergence the best-effort result is returned with
// [Framework.Unconverged] set.
//
// # Concurrency
//
// Per-slot work is independent: [Assembler.Assemble] fans alignment out
// across a bounded worker group. The scale accumulation is a commutative
// sum and framework appends are serialized internally, so results do not
// depend on slot processing order. Refinement is strictly sequential and
// runs once after all slots complete.
//
// # Known Limitation
//
// Slot compatibility is decided by shape label equality only. Symmetry
// operators are not checked, so a label collision between geometrically
// incompatible shapes (a square unit in a rectangular slot, say) is not
// detected. Stricter matching would be a separate enhancement, not a
// change to the label contract.
package assembly
