// Package server implements the HTTP surface using the Echo framework.
//
// Routes: the tracker page (/), the SSE push stream (/subscribe), the roster
// mutations (/add, /remove, /fetch-user), and health/metrics endpoints.
// Mutating handlers follow one pattern: validate, mutate the roster, publish
// an event, acknowledge with no body. All visual updates flow back through
// the push stream as datastar patch events.
package server
