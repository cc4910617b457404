// Package diag defines the findings model shared by the solution checks.
//
// # Purpose
//
//   - Provide deterministic data structures that capture problems found in a
//     tiling solution: overlaps, uncovered cells, out-of-grid tiles, budget
//     violations and cost mismatches.
//   - Offer light-weight utilities (Reporter, Bag) that let checks emit
//     findings without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the grid rectangle the finding is about (a single cell is a
//     1x1 rectangle, a whole-solution finding uses the grid bounds).
//   - Entry – index of the offending solution entry, or -1.
//   - Notes – optional secondary locations.
//
// Findings are data, not errors: a solution with error findings is still a
// value the caller may inspect, render or discard.
package diag
