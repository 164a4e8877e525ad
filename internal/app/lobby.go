package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

const hatAsset = "hat.glb"

var identity = domain.Quaternion{W: 1}

// lobby is the hat prop and its instruction labels.
type lobby struct {
	hat    domain.ResourceID
	labels []domain.ResourceID
}

func hatSpec() domain.ResourceSpec {
	return domain.ResourceSpec{
		Kind:     domain.KindModel,
		Name:     "Hat",
		Asset:    hatAsset,
		Position: domain.Vector3{X: 0, Y: 0.5, Z: 0},
		Rotation: identity,
		Scale:    domain.Vector3{X: 1, Y: 1, Z: 1},
	}
}

// lobbyLabels returns the instruction labels, positioned relative to the hat.
func lobbyLabels(hat domain.ResourceID, country string) []domain.ResourceSpec {
	label := func(name, text string, height, y float64) domain.ResourceSpec {
		parent := hat
		return domain.ResourceSpec{
			Kind:     domain.KindText,
			Name:     name,
			Parent:   &parent,
			Text:     text,
			Height:   height,
			Anchor:   "middle-center",
			Position: domain.Vector3{X: 0, Y: y, Z: 0},
			Rotation: identity,
			Scale:    domain.Vector3{X: 1, Y: 1, Z: 1},
		}
	}

	return []domain.ResourceSpec{
		label("label1", "Version : "+country, 0.04, 1.75),
		label("label2", "Click on the hat to get a random name", 0.05, 1.9),
		label("label3", "Then try to guess your name by asking other players", 0.035, 1.85),
	}
}

// buildLobby creates the hat and its labels. On failure everything already created
// is destroyed again.
func buildLobby(ctx context.Context, backend domain.ResourceBackend, country string) (*lobby, error) {
	hat, err := backend.Create(ctx, hatSpec())
	if err != nil {
		return nil, fmt.Errorf("failed to create hat: %w", err)
	}

	l := &lobby{hat: hat}
	for _, spec := range lobbyLabels(hat, country) {
		id, err := backend.Create(ctx, spec)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create %s: %w", spec.Name, err), l.destroy(ctx, backend))
		}
		l.labels = append(l.labels, id)
	}
	return l, nil
}

// destroy removes the labels, then the hat.
func (l *lobby) destroy(ctx context.Context, backend domain.ResourceBackend) error {
	var errs []error
	for _, id := range l.labels {
		if err := backend.Destroy(ctx, id); err != nil && !errors.Is(err, domain.ErrResourceNotFound) {
			errs = append(errs, err)
		}
	}
	if err := backend.Destroy(ctx, l.hat); err != nil && !errors.Is(err, domain.ErrResourceNotFound) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
