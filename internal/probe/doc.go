// Package probe executes smoke suites against a live service.
//
// The runner is deliberately simple: strictly sequential, one attempt per
// step, no retries and no backoff. The only state a run carries is the
// resolved base URL and the accumulating result; the first failure is
// terminal unless keep-going mode is on.
//
// Transport errors are not distinguished from application-level failures.
// Both leave the step with a body that fails its expectation, matching
// the observable behavior of the shell scripts this package replaces.
package probe
