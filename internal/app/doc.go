// Package app is the session host. It turns platform events into attachment and
// scheduler calls and owns the lobby prop.
//
// Depends on small interfaces, not on the concrete manager, scheduler or catalog.
package app
