package nametag

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

func TestMask_OneBlockPerRune(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Alice", 5},
		{"Zoé", 3},
		{"Jean-Pierre", 11},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			mask := Mask(tt.label)
			assert.Equal(t, tt.want, utf8.RuneCountInString(mask))
			for _, r := range mask {
				assert.Equal(t, '█', r)
			}
		})
	}
}

func TestSpecs_MaskSitsBehindLabel(t *testing.T) {
	fg, mask := Specs("Napoléon")

	assert.Equal(t, domain.KindText, fg.Kind)
	assert.Equal(t, "Napoléon", fg.Text)
	assert.Equal(t, Mask("Napoléon"), mask.Text)

	require.NotNil(t, fg.Color)
	require.NotNil(t, mask.Color)
	assert.Equal(t, domain.Color{R: 255, G: 255, B: 255}, *fg.Color)
	assert.Equal(t, domain.Color{R: 0, G: 0, B: 0}, *mask.Color)

	assert.Equal(t, fg.Position.Y, mask.Position.Y)
	assert.Less(t, mask.Position.Z, fg.Position.Z, "mask must be between the head and the label")

	assert.Equal(t, fg.Rotation, mask.Rotation)
	assert.Equal(t, fg.Scale, mask.Scale)
	assert.Equal(t, fg.Height, mask.Height)
}

func TestSpecs_ColorsAreNotShared(t *testing.T) {
	fg, _ := Specs("A")
	fg.Color.R = 1

	again, _ := Specs("A")
	assert.Equal(t, uint8(255), again.Color.R)
}

func TestFromEulerDegrees(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		want    domain.Quaternion
	}{
		{"identity", 0, 0, 0, domain.Quaternion{W: 1}},
		{"half turn around y", 0, 180, 0, domain.Quaternion{Y: 1}},
		{"quarter turn around x", 90, 0, 0, domain.Quaternion{X: 0.7071067811865476, W: 0.7071067811865476}},
		{"quarter turn around z", 0, 0, 90, domain.Quaternion{Z: 0.7071067811865476, W: 0.7071067811865476}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEulerDegrees(tt.x, tt.y, tt.z)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
			assert.InDelta(t, tt.want.W, got.W, 1e-9)
		})
	}
}
