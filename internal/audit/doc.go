// Package audit runs the collection-and-scoring pipeline: it fans the
// applicable collectors out concurrently, joins on full settlement (a
// failed or timed-out collector never short-circuits its siblings),
// feeds the settled results through the scoring engine, and assembles
// the final AuditResult.
//
// The fan-out writes each collector's result to its own variable; the
// runner reads the combined set only after every collector has settled,
// so there is no concurrent-write race and no completion-order
// dependency. A collector that panics is caught at the orchestration
// boundary and reported as an error-status result.
package audit
