// Package scoring converts normalized collector payloads into pillar
// scores and prioritized issues. One function per pillar; each starts
// from a deterministic baseline (the vendor-supplied performance score,
// or a fixed ceiling of 100), applies an ordered, declarative rule table
// via a single generic evaluator, and clamps the result to [0,100] at
// the end. Scoring functions are pure: no side effects, and identical
// input always yields identical output.
//
// A pillar whose input carries no payload scores 0 with an empty issue
// list, so callers can tell "could not be measured" apart from "measured
// and scored poorly".
package scoring
