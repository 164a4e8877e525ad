package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/correlation"
)

// NamePicker chooses the name a user will wear.
type NamePicker interface {
	Pick(ctx context.Context, country string) (string, error)
}

// AttachmentManager tracks worn name tags.
type AttachmentManager interface {
	Assign(ctx context.Context, userID domain.UserID, label string) error
	Remove(ctx context.Context, userID domain.UserID) error
	OnUserDisconnected(ctx context.Context, userID domain.UserID) error
	RequestReconcile()
}

// SyncScheduler rate-limits reconcile passes.
type SyncScheduler interface {
	Register(fn func())
	Request()
}

// Host reacts to session events.
type Host struct {
	backend     domain.ResourceBackend
	names       NamePicker
	attachments AttachmentManager
	scheduler   SyncScheduler
	country     string

	mu    sync.Mutex
	lobby *lobby
}

// NewHost wires the reconcile pass of attachments as the scheduler's action, so it
// must be called before any event is dispatched.
func NewHost(backend domain.ResourceBackend, names NamePicker, attachments AttachmentManager, scheduler SyncScheduler, country string) *Host {
	scheduler.Register(attachments.RequestReconcile)
	return &Host{
		backend:     backend,
		names:       names,
		attachments: attachments,
		scheduler:   scheduler,
		country:     country,
	}
}

// Dispatch routes one event to its handler.
func (h *Host) Dispatch(ctx context.Context, ev domain.Event) error {
	ctx = correlation.Ensure(ctx)

	if ev.Type.NeedsUser() && ev.UserID == uuid.Nil {
		return fmt.Errorf("%s: %w", ev.Type, domain.ErrMissingUserID)
	}
	slog.DebugContext(ctx, "Dispatching event", "type", ev.Type, "user_id", ev.UserID)

	switch ev.Type {
	case domain.EventSessionStarted:
		return h.Started(ctx)
	case domain.EventUserJoined:
		h.UserJoined(ctx, ev.UserID)
		return nil
	case domain.EventUserLeft:
		return h.UserLeft(ctx, ev.UserID)
	case domain.EventAssignRequested:
		return h.AssignRequested(ctx, ev.UserID)
	case domain.EventRemoveRequested:
		return h.RemoveRequested(ctx, ev.UserID)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownEventType, ev.Type)
	}
}

// Started spawns the lobby. Later calls are no-ops once it exists; a failed attempt
// leaves nothing behind and may be retried.
func (h *Host) Started(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lobby != nil {
		return nil
	}

	l, err := buildLobby(ctx, h.backend, h.country)
	if err != nil {
		return err
	}
	h.lobby = l
	slog.InfoContext(ctx, "Lobby spawned", "country", h.country, "hat_id", l.hat)
	return nil
}

// UserJoined requests a reconcile so the newcomer's client sees existing tags.
func (h *Host) UserJoined(ctx context.Context, userID domain.UserID) {
	slog.InfoContext(ctx, "User joined", "user_id", userID)
	h.scheduler.Request()
}

func (h *Host) UserLeft(ctx context.Context, userID domain.UserID) error {
	slog.InfoContext(ctx, "User left", "user_id", userID)
	return h.attachments.OnUserDisconnected(ctx, userID)
}

// AssignRequested gives userID a random name, replacing the current one.
func (h *Host) AssignRequested(ctx context.Context, userID domain.UserID) error {
	name, err := h.names.Pick(ctx, h.country)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNameUnavailable, err)
	}

	if err := h.attachments.Assign(ctx, userID, name); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Name assigned", "user_id", userID)
	h.scheduler.Request()
	return nil
}

func (h *Host) RemoveRequested(ctx context.Context, userID domain.UserID) error {
	return h.attachments.Remove(ctx, userID)
}

// Close tears down the lobby.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lobby == nil {
		return nil
	}
	err := h.lobby.destroy(ctx, h.backend)
	h.lobby = nil
	return err
}
