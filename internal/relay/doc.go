// Package relay implements the in-process publish/subscribe hub using the actor pattern.
//
// One goroutine owns the subscriber registry and processes commands from a buffered
// channel (no mutexes). Each subscriber gets a buffered event channel; subscribers
// that cannot keep up are dropped so a dead connection never blocks the rest.
package relay
