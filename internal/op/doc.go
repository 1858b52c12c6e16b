// Package op defines the trace vocabulary shared by the consolidator and
// its callers: atomic read/write events produced by instrumented algorithm
// runs, the operation kinds they can consolidate into, and the recognizer
// contract that performs that consolidation.
//
// Events are immutable once produced. Code in this module consumes them but
// never mutates them, so values (not pointers) are passed freely.
//
// Ordering is carried by the Seq field, a monotonic logical position
// assigned when the trace is loaded. Wall-clock timestamps are never used
// for ordering.
package op
