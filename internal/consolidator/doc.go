// Package consolidator implements the registry/matcher that turns windows
// of atomic read/write events into composite operations.
//
// ARCHITECTURE:
//
// The Consolidator owns a table indexed by arity - the fixed number of
// atomic events a recognizer consumes. Each slot preserves registration
// order, which defines match-attempt precedence: TryConsolidate returns the
// FIRST recognizer's result, not the best one.
//
// Derived bounds (minimum and maximum registered arity) are widened eagerly
// on registration and recomputed by full rescan on removal. The rescan is
// correctness-critical: removing the sole extremal recognizer may shift a
// bound inward by more than one, so the bound cannot be decremented or
// guessed. Both bounds use independent scans with their own comparisons.
//
// CONCURRENCY:
//
// All operations are synchronous, in-memory and complete immediately. The
// Consolidator performs no internal locking; callers sharing one across
// goroutines must serialize access themselves (a single mutex around the
// whole table), because Register and Unregister mutate the derived bounds
// that TryConsolidate and Bounds read.
package consolidator
