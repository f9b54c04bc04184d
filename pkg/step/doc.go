// Package step defines the persisted form of diagnostic procedures: an
// ordered tree of steps with execution and health statuses.
//
// This package is the storage boundary of sopgraph. Procedure trees are what
// the admin console saves and loads; the editable canvas form lives in
// [github.com/opsdeck/sopgraph/pkg/graph] and is derived from trees on demand.
//
// # Wire Format
//
// Trees serialize to a compact JSON shape. The display label uses the key
// "step", and empty child lists are omitted entirely rather than encoded as
// empty arrays:
//
//	{
//	  "id": "9b2f1ac4",
//	  "step": "Start",
//	  "description": "Entry point",
//	  "execution_status": "pending",
//	  "health_status": "unknown",
//	  "children": [
//	    {"step": "Check replica lag", "description": "...", ...}
//	  ]
//	}
//
// The id is optional; nodes without one receive a fresh identifier when the
// tree is expanded into a graph.
//
// # Statuses
//
// [ExecutionStatus] tracks whether a step has been carried out during a run;
// [HealthStatus] records what the step observed. Both are closed string
// enums, and unknown values fail [ExecutionStatus.Valid] and
// [HealthStatus.Valid].
//
// # The Root Step
//
// Every procedure tree starts at a step labeled "Start" ([RootLabel]). The
// conversions in pkg/graph force this label in both directions, so documents
// with a different root label are healed on the next round trip. [Default]
// returns the single-step tree used when a procedure has no stored tree yet.
//
// # Validation
//
// [Validate] implements the pre-save check: every step needs a non-empty
// description, and the first offender is reported by label via
// [*ValidationError]. [ValidateWire] guards the HTTP boundary with a JSON
// Schema check before a payload is decoded at all.
package step
