// Package api provides the HTTP boundary of the process discovery
// engine: thin chi handlers that trigger mining, task generation, and
// reprioritization, plus the review surface for process notes and
// suggested tasks. Handlers validate input, call one service or store
// operation, and translate errors to HTTP status codes; no engine logic
// lives here.
package api
