package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/nametag"
)

const (
	cmdBufferSize = 256
	stopTimeout   = 10 * time.Second
)

var ErrManagerStopped = errors.New("attachment manager stopped")

// tracked is everything one user currently wears. Both resources are created
// together and destroyed together.
type tracked struct {
	label      string
	point      domain.AttachPoint
	foreground domain.ResourceID
	mask       domain.ResourceID
}

func (t *tracked) resources() []domain.ResourceID {
	return []domain.ResourceID{t.foreground, t.mask}
}

// Attachment is a read-only view of one tracked attachment.
type Attachment struct {
	UserID      domain.UserID      `json:"user_id"`
	Label       string             `json:"label"`
	AttachPoint domain.AttachPoint `json:"attach_point"`
	Foreground  domain.ResourceID  `json:"foreground"`
	Mask        domain.ResourceID  `json:"mask"`
}

// ReconcileResult summarises one detach/reattach pass.
type ReconcileResult struct {
	Reconciled int
	Failed     int
}

// Manager owns the user → attachment map.
type Manager struct {
	cmdCh       chan managerCmd
	done        chan struct{}
	stopOnce    sync.Once
	backend     domain.ResourceBackend
	point       domain.AttachPoint
	callTimeout time.Duration
	clock       clockwork.Clock
	metrics     *metrics.AttachmentMetrics

	// owned by the run goroutine
	entries map[domain.UserID]*tracked
}

// NewManager starts a manager that attaches name tags at point. callTimeout bounds
// every single backend call.
func NewManager(backend domain.ResourceBackend, point domain.AttachPoint, callTimeout time.Duration, clock clockwork.Clock, m *metrics.AttachmentMetrics) *Manager {
	mgr := &Manager{
		cmdCh:       make(chan managerCmd, cmdBufferSize),
		done:        make(chan struct{}),
		backend:     backend,
		point:       point,
		callTimeout: callTimeout,
		clock:       clock,
		metrics:     m,
		entries:     make(map[domain.UserID]*tracked),
	}
	go mgr.run()
	return mgr
}

// Assign replaces whatever userID wears with a fresh name tag showing label.
// Nothing is tracked unless both resources were created and attached.
func (m *Manager) Assign(ctx context.Context, userID domain.UserID, label string) error {
	replyCh := make(chan error, 1)
	if err := m.send(ctx, assignCmd{ctx: ctx, userID: userID, label: label, replyCh: replyCh}); err != nil {
		return err
	}
	return awaitOutcome(m.done, replyCh)
}

// Remove tears down userID's attachment. Removing an absent user is a no-op.
func (m *Manager) Remove(ctx context.Context, userID domain.UserID) error {
	replyCh := make(chan error, 1)
	if err := m.send(ctx, removeCmd{userID: userID, replyCh: replyCh}); err != nil {
		return err
	}
	return awaitOutcome(m.done, replyCh)
}

// OnUserDisconnected drops the attachment of a user whose session ended.
func (m *Manager) OnUserDisconnected(ctx context.Context, userID domain.UserID) error {
	return m.Remove(ctx, userID)
}

// ReconcileAll detaches and reattaches every tracked resource and waits for the pass.
func (m *Manager) ReconcileAll(ctx context.Context) (ReconcileResult, error) {
	replyCh := make(chan ReconcileResult, 1)
	if err := m.send(ctx, reconcileCmd{replyCh: replyCh}); err != nil {
		return ReconcileResult{}, err
	}
	return awaitReply(ctx, m.done, replyCh)
}

// RequestReconcile queues a reconcile pass without waiting for it. It never blocks,
// which makes it safe to register as a scheduler action.
func (m *Manager) RequestReconcile() {
	select {
	case <-m.done:
		return
	default:
	}

	select {
	case m.cmdCh <- reconcileCmd{}:
	default:
		slog.Warn("Reconcile request dropped, command queue full", "capacity", cap(m.cmdCh))
	}
}

// Attachments returns the current attachments ordered by user id.
func (m *Manager) Attachments(ctx context.Context) ([]Attachment, error) {
	replyCh := make(chan []Attachment, 1)
	if err := m.send(ctx, listCmd{replyCh: replyCh}); err != nil {
		return nil, err
	}
	return awaitReply(ctx, m.done, replyCh)
}

// Stop destroys every tracked attachment and stops the manager goroutine.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cmdCh <- stopCmd{}

		timer := m.clock.NewTimer(stopTimeout)
		defer timer.Stop()

		select {
		case <-m.done:
			slog.Info("Attachment manager stopped")
		case <-timer.Chan():
			slog.Warn("Attachment manager stop timeout exceeded", "timeout", stopTimeout)
		}
	})
}

func (m *Manager) send(ctx context.Context, cmd managerCmd) error {
	select {
	case <-m.done:
		return ErrManagerStopped
	default:
	}

	select {
	case m.cmdCh <- cmd:
		return nil
	case <-m.done:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func awaitReply[T any](ctx context.Context, done <-chan struct{}, replyCh <-chan T) (T, error) {
	select {
	case v := <-replyCh:
		return v, nil
	case <-done:
		var zero T
		return zero, ErrManagerStopped
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// awaitOutcome waits for a queued mutation regardless of the caller's context: once
// queued, the handler's reply is the only record of whether the entry changed.
// Handlers bound their own backend calls, so the wait is bounded too.
func awaitOutcome(done <-chan struct{}, replyCh <-chan error) error {
	select {
	case err := <-replyCh:
		return err
	case <-done:
		return ErrManagerStopped
	}
}

func (m *Manager) run() {
	defer close(m.done)

	for cmd := range m.cmdCh {
		if _, stop := cmd.(stopCmd); stop {
			m.handleStop()
			return
		}
		m.handle(cmd)
	}
}

func (m *Manager) handle(cmd managerCmd) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Attachment manager panic recovered", "command_type", fmt.Sprintf("%T", cmd), "panic", r)
		}
	}()

	switch c := cmd.(type) {
	case assignCmd:
		c.replyCh <- m.handleAssign(c)
	case removeCmd:
		c.replyCh <- m.handleRemove(c.userID)
	case reconcileCmd:
		result := m.handleReconcile()
		if c.replyCh != nil {
			c.replyCh <- result
		}
	case listCmd:
		c.replyCh <- m.snapshot()
	default:
		slog.Warn("Attachment manager received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
	}
}

func (m *Manager) handleAssign(c assignCmd) error {
	// The caller gave up while the command was queued.
	if err := c.ctx.Err(); err != nil {
		return err
	}

	if err := m.handleRemove(c.userID); err != nil {
		slog.WarnContext(c.ctx, "Previous attachment not fully destroyed", "user_id", c.userID, "error", err)
	}

	entry, err := m.create(c.ctx, c.userID, c.label)
	if err != nil {
		m.countAssign("error")
		return fmt.Errorf("failed to assign name tag: %w", err)
	}

	m.entries[c.userID] = entry
	m.countAssign("ok")
	m.setActive()
	slog.InfoContext(c.ctx, "Name tag attached", "user_id", c.userID, "attach_point", entry.point)
	return nil
}

// create builds both resources and attaches them. On any failure every resource
// created so far is destroyed again.
func (m *Manager) create(ctx context.Context, userID domain.UserID, label string) (*tracked, error) {
	fgSpec, maskSpec := nametag.Specs(label)

	var created []domain.ResourceID
	cleanup := func() {
		for _, id := range created {
			if err := m.destroy(id); err != nil {
				slog.WarnContext(ctx, "Failed to destroy partially created resource", "resource_id", id, "error", err)
			}
		}
	}

	for _, spec := range []domain.ResourceSpec{fgSpec, maskSpec} {
		id, err := withTimeout(ctx, m.callTimeout, func(ctx context.Context) (domain.ResourceID, error) {
			return m.backend.Create(ctx, spec)
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("create %s: %w", spec.Name, err)
		}
		created = append(created, id)
	}

	for _, id := range created {
		if _, err := withTimeout(ctx, m.callTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.backend.Attach(ctx, id, userID, m.point)
		}); err != nil {
			cleanup()
			return nil, fmt.Errorf("attach resource %s: %w", id, err)
		}
	}

	return &tracked{
		label:      label,
		point:      m.point,
		foreground: created[0],
		mask:       created[1],
	}, nil
}

func (m *Manager) handleRemove(userID domain.UserID) error {
	entry, ok := m.entries[userID]
	if !ok {
		return nil
	}

	var errs []error
	for _, id := range entry.resources() {
		if err := m.destroy(id); err != nil {
			errs = append(errs, fmt.Errorf("destroy resource %s: %w", id, err))
		}
	}
	delete(m.entries, userID)

	if m.metrics != nil {
		m.metrics.Removals.Inc()
	}
	m.setActive()
	slog.Info("Name tag removed", "user_id", userID)
	return errors.Join(errs...)
}

func (m *Manager) handleReconcile() ReconcileResult {
	start := m.clock.Now()
	var result ReconcileResult

	for userID, entry := range m.entries {
		if err := m.reconcileEntry(userID, entry); err != nil {
			slog.Warn("Attachment reconcile failed", "user_id", userID, "error", err)
			result.Failed++
			continue
		}
		result.Reconciled++
	}

	if m.metrics != nil {
		m.metrics.ReconcilePasses.Inc()
		m.metrics.ReconcileFailures.Add(float64(result.Failed))
		m.metrics.ReconcileDuration.Observe(m.clock.Since(start).Seconds())
	}
	slog.Debug("Attachments reconciled", "reconciled", result.Reconciled, "failed", result.Failed)
	return result
}

// reconcileEntry re-expresses the binding of every resource of one entry. Content,
// target and resource identity are left untouched.
func (m *Manager) reconcileEntry(userID domain.UserID, entry *tracked) error {
	ctx := context.Background()

	for _, id := range entry.resources() {
		point := m.currentPoint(ctx, id, entry.point)

		if _, err := abandonAfter(ctx, m.callTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.backend.Detach(ctx, id)
		}); err != nil {
			return fmt.Errorf("detach resource %s: %w", id, err)
		}

		if _, err := abandonAfter(ctx, m.callTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.backend.Attach(ctx, id, userID, point)
		}); err != nil {
			return fmt.Errorf("reattach resource %s: %w", id, err)
		}
	}
	return nil
}

// currentPoint reads the binding the platform holds, falling back to the point the
// entry was created with when the platform has cleared it.
func (m *Manager) currentPoint(ctx context.Context, id domain.ResourceID, fallback domain.AttachPoint) domain.AttachPoint {
	point, err := abandonAfter(ctx, m.callTimeout, func(ctx context.Context) (domain.AttachPoint, error) {
		return m.backend.AttachPoint(ctx, id)
	})
	if err != nil || point == "" || point == domain.AttachNone {
		return fallback
	}
	return point
}

func (m *Manager) destroy(id domain.ResourceID) error {
	_, err := withTimeout(context.Background(), m.callTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.backend.Destroy(ctx, id)
	})
	return err
}

// withTimeout runs one backend operation bounded by timeout.
func withTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(ctx)
}

type callResult[T any] struct {
	value T
	err   error
}

// abandonAfter is withTimeout for backends that may ignore ctx: the reconcile pass
// stops waiting after timeout even if op is still running.
func abandonAfter[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan callResult[T], 1)
	go func() {
		v, err := op(ctx)
		resultCh <- callResult[T]{value: v, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (m *Manager) snapshot() []Attachment {
	out := make([]Attachment, 0, len(m.entries))
	for userID, entry := range m.entries {
		out = append(out, Attachment{
			UserID:      userID,
			Label:       entry.label,
			AttachPoint: entry.point,
			Foreground:  entry.foreground,
			Mask:        entry.mask,
		})
	}
	slices.SortFunc(out, func(a, b Attachment) int {
		return bytes.Compare(a.UserID[:], b.UserID[:])
	})
	return out
}

func (m *Manager) handleStop() {
	for userID := range m.entries {
		if err := m.handleRemove(userID); err != nil {
			slog.Warn("Failed to tear down attachment on stop", "user_id", userID, "error", err)
		}
	}
}

func (m *Manager) countAssign(status string) {
	if m.metrics != nil {
		m.metrics.Assigns.WithLabelValues(status).Inc()
	}
}

func (m *Manager) setActive() {
	if m.metrics != nil {
		m.metrics.Active.Set(float64(len(m.entries)))
	}
}
