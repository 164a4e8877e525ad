// Package attachment owns the per-user name tag attachments.
//
// A single goroutine owns the user → attachment map (actor pattern, no mutexes):
// assign, remove and the periodic detach/reattach pass are commands processed one
// at a time, so they never observe each other's partial state.
package attachment
