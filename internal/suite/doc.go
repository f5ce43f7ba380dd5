// Package suite defines the declarative smoke-suite format.
//
// A suite is a YAML document listing operation descriptors: method, path,
// optional JSON body, and an expectation on the response. The format
// replaces the function-per-endpoint duplication of shell smoke scripts
// with data interpreted by a single runner (internal/probe).
//
// Two suites ship embedded in the binary, one per service under test:
// "kitchen" (inventory/order/battle) and "meals"
// (meal/combatant/battle/leaderboard). User-authored suites are loaded
// from disk and may be schema-checked offline with `sizzle validate`.
package suite
