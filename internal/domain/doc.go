// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (user.go, resource.go, content.go, event.go, errors.go) hold
// shared types and the contracts of the external collaborators the core consumes.
// No implementation code - just contracts.
package domain
