// Package stubserver serves a conforming in-memory implementation of the
// two services the smoke suites target.
//
// It backs `sizzle stub` for local harness development and doubles as the
// test fixture for the runner and CLI packages. Battle and leaderboard
// semantics follow the reference meal-battle service: a combatant's score
// is price weighted by cuisine length minus a difficulty penalty, and the
// normalized score delta against a random decimal picks the winner.
package stubserver
