// Package parallel runs a batch of job specs concurrently.
//
// A spec is a single string "<lang> <script> [args...]". Every spec in a batch
// gets its own goroutine and the executor waits for all of them; a failing job
// never cancels its siblings. Outcomes come back in batch order and the batch
// error joins every failure.
//
// The executor is meant to be given a runner over an isolated dispatch table,
// so in-process bridges are replaced by their subprocess fallbacks while jobs
// run side by side.
package parallel
