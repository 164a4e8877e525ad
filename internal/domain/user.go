package domain

import "github.com/google/uuid"

// UserID identifies a connected user. Stable for the lifetime of the user's session.
type UserID = uuid.UUID

// AttachPoint is a symbolic location on a user's avatar.
type AttachPoint string

const (
	AttachNone      AttachPoint = "none"
	AttachHead      AttachPoint = "head"
	AttachNeck      AttachPoint = "neck"
	AttachHips      AttachPoint = "hips"
	AttachCenterEye AttachPoint = "center-eye"
	AttachSpineTop  AttachPoint = "spine-top"
	AttachLeftHand  AttachPoint = "left-hand"
	AttachRightHand AttachPoint = "right-hand"
)

var attachPoints = map[AttachPoint]struct{}{
	AttachHead:      {},
	AttachNeck:      {},
	AttachHips:      {},
	AttachCenterEye: {},
	AttachSpineTop:  {},
	AttachLeftHand:  {},
	AttachRightHand: {},
}

// ParseAttachPoint validates a configured body location. "none" is not a valid target.
func ParseAttachPoint(s string) (AttachPoint, error) {
	p := AttachPoint(s)
	if _, ok := attachPoints[p]; !ok {
		return "", ErrInvalidAttachPoint
	}
	return p, nil
}
