// Package syncfix implements the coalescing scheduler that paces attachment resync.
//
// Any number of Request calls collapse into at most one firing per interval. A request
// that arrives during the cooldown arms a single deferred firing at the end of it, so
// requests are never dropped and never duplicated.
package syncfix
