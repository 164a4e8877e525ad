// Package nametag builds the two resources of a worn name: the label and the opaque
// mask rendered just behind it, so the wearer cannot read their own name.
package nametag

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

const (
	maskRune   = "█"
	textHeight = 0.8
	tagScale   = 0.08
	anchor     = "middle-center"
)

var (
	white = domain.Color{R: 255, G: 255, B: 255}
	black = domain.Color{R: 0, G: 0, B: 0}

	// Facing away from the wearer.
	facing = FromEulerDegrees(0, 180, 0)
)

// Specs returns the label and mask resources for label. The mask sits 3cm closer to
// the head and has one block per rune of label.
func Specs(label string) (foreground, mask domain.ResourceSpec) {
	foreground = textSpec("name", label, white, domain.Vector3{X: 0, Y: 0.2, Z: 0.18})
	mask = textSpec("name-mask", Mask(label), black, domain.Vector3{X: 0, Y: 0.2, Z: 0.15})
	return foreground, mask
}

// Mask returns the opaque block string covering label.
func Mask(label string) string {
	return strings.Repeat(maskRune, utf8.RuneCountInString(label))
}

func textSpec(name, text string, color domain.Color, position domain.Vector3) domain.ResourceSpec {
	c := color
	return domain.ResourceSpec{
		Kind:     domain.KindText,
		Name:     name,
		Text:     text,
		Height:   textHeight,
		Anchor:   anchor,
		Color:    &c,
		Position: position,
		Rotation: facing,
		Scale:    domain.Vector3{X: tagScale, Y: tagScale, Z: tagScale},
	}
}

// FromEulerDegrees converts Euler angles in degrees to a quaternion, applying yaw (y),
// then pitch (x), then roll (z).
func FromEulerDegrees(x, y, z float64) domain.Quaternion {
	toRad := math.Pi / 180
	halfPitch := x * toRad / 2
	halfYaw := y * toRad / 2
	halfRoll := z * toRad / 2

	sinPitch, cosPitch := math.Sincos(halfPitch)
	sinYaw, cosYaw := math.Sincos(halfYaw)
	sinRoll, cosRoll := math.Sincos(halfRoll)

	return domain.Quaternion{
		X: cosYaw*sinPitch*cosRoll + sinYaw*cosPitch*sinRoll,
		Y: sinYaw*cosPitch*cosRoll - cosYaw*sinPitch*sinRoll,
		Z: cosYaw*cosPitch*sinRoll - sinYaw*sinPitch*cosRoll,
		W: cosYaw*cosPitch*cosRoll + sinYaw*sinPitch*sinRoll,
	}
}
