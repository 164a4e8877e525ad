package domain

import (
	"context"

	"github.com/google/uuid"
)

// ResourceID is an opaque handle to a renderable resource owned by the backend.
type ResourceID = uuid.UUID

type ResourceKind string

const (
	KindText  ResourceKind = "text"
	KindModel ResourceKind = "model"
)

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ResourceSpec describes a resource to create. Text fields apply to KindText,
// Asset to KindModel.
type ResourceSpec struct {
	Kind     ResourceKind `json:"kind"`
	Name     string       `json:"name"`
	Parent   *ResourceID  `json:"parent,omitempty"`
	Text     string       `json:"text,omitempty"`
	Height   float64      `json:"height,omitempty"`
	Anchor   string       `json:"anchor,omitempty"`
	Color    *Color       `json:"color,omitempty"`
	Asset    string       `json:"asset,omitempty"`
	Position Vector3      `json:"position"`
	Rotation Quaternion   `json:"rotation"`
	Scale    Vector3      `json:"scale"`
}

// ResourceBackend creates and binds renderable resources on the hosting platform.
type ResourceBackend interface {
	Create(ctx context.Context, spec ResourceSpec) (ResourceID, error)
	Destroy(ctx context.Context, id ResourceID) error
	Attach(ctx context.Context, id ResourceID, userID UserID, point AttachPoint) error
	Detach(ctx context.Context, id ResourceID) error
	// AttachPoint reports where the resource is currently bound. An empty point means
	// the platform holds no binding for it.
	AttachPoint(ctx context.Context, id ResourceID) (AttachPoint, error)
}
