package scene

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

type OpKind string

const (
	OpCreate  OpKind = "create"
	OpDestroy OpKind = "destroy"
	OpAttach  OpKind = "attach"
	OpDetach  OpKind = "detach"
)

// Op is one change applied to the scene. Revision increases by one per change.
type Op struct {
	Kind     OpKind               `json:"op"`
	Revision uint64               `json:"rev"`
	ID       domain.ResourceID    `json:"id"`
	Spec     *domain.ResourceSpec `json:"spec,omitempty"`
	UserID   *domain.UserID       `json:"user_id,omitempty"`
	Point    domain.AttachPoint   `json:"point,omitempty"`
}

// Publisher receives every Op after it has been applied.
type Publisher interface {
	Publish(op Op)
}

type binding struct {
	userID domain.UserID
	point  domain.AttachPoint
}

type resource struct {
	id      domain.ResourceID
	spec    domain.ResourceSpec
	created uint64
	binding *binding
}

// Backend is an in-memory domain.ResourceBackend.
type Backend struct {
	// pubMu spans a mutation and its publish so publishers see ops in revision order.
	pubMu sync.Mutex

	mu         sync.Mutex
	resources  map[domain.ResourceID]*resource
	revision   uint64
	publishers []Publisher
}

func NewBackend() *Backend {
	return &Backend{resources: make(map[domain.ResourceID]*resource)}
}

// Subscribe adds a publisher. Ops applied before the call are not replayed; use
// Snapshot to bootstrap.
func (b *Backend) Subscribe(p Publisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishers = append(b.publishers, p)
}

func (b *Backend) Create(ctx context.Context, spec domain.ResourceSpec) (domain.ResourceID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	b.mu.Lock()
	if spec.Parent != nil {
		if _, ok := b.resources[*spec.Parent]; !ok {
			b.mu.Unlock()
			return uuid.Nil, fmt.Errorf("parent %s: %w", *spec.Parent, domain.ErrResourceNotFound)
		}
	}
	id := uuid.New()
	b.revision++
	r := &resource{id: id, spec: spec, created: b.revision}
	b.resources[id] = r
	op := Op{Kind: OpCreate, Revision: b.revision, ID: id, Spec: &r.spec}
	pubs := b.publishers
	b.mu.Unlock()

	slog.DebugContext(ctx, "Resource created", "resource_id", id, "name", spec.Name, "kind", spec.Kind)
	publish(pubs, op)
	return id, nil
}

// Destroy removes the resource and, recursively, its children.
func (b *Backend) Destroy(ctx context.Context, id domain.ResourceID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	b.mu.Lock()
	if _, ok := b.resources[id]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("destroy %s: %w", id, domain.ErrResourceNotFound)
	}
	var ops []Op
	b.destroyLocked(id, &ops)
	pubs := b.publishers
	b.mu.Unlock()

	slog.DebugContext(ctx, "Resource destroyed", "resource_id", id, "removed", len(ops))
	publish(pubs, ops...)
	return nil
}

func (b *Backend) destroyLocked(id domain.ResourceID, ops *[]Op) {
	for childID, child := range b.resources {
		if child.spec.Parent != nil && *child.spec.Parent == id {
			b.destroyLocked(childID, ops)
		}
	}
	delete(b.resources, id)
	b.revision++
	*ops = append(*ops, Op{Kind: OpDestroy, Revision: b.revision, ID: id})
}

func (b *Backend) Attach(ctx context.Context, id domain.ResourceID, userID domain.UserID, point domain.AttachPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if point == "" || point == domain.AttachNone {
		return fmt.Errorf("attach %s: %w", id, domain.ErrInvalidAttachPoint)
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	b.mu.Lock()
	r, ok := b.resources[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("attach %s: %w", id, domain.ErrResourceNotFound)
	}
	r.binding = &binding{userID: userID, point: point}
	b.revision++
	op := Op{Kind: OpAttach, Revision: b.revision, ID: id, UserID: &userID, Point: point}
	pubs := b.publishers
	b.mu.Unlock()

	publish(pubs, op)
	return nil
}

// Detach clears the binding of the resource. Detaching an unbound resource is a no-op.
func (b *Backend) Detach(ctx context.Context, id domain.ResourceID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	b.mu.Lock()
	r, ok := b.resources[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("detach %s: %w", id, domain.ErrResourceNotFound)
	}
	if r.binding == nil {
		b.mu.Unlock()
		return nil
	}
	r.binding = nil
	b.revision++
	op := Op{Kind: OpDetach, Revision: b.revision, ID: id}
	pubs := b.publishers
	b.mu.Unlock()

	publish(pubs, op)
	return nil
}

func (b *Backend) AttachPoint(ctx context.Context, id domain.ResourceID) (domain.AttachPoint, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.resources[id]
	if !ok {
		return "", fmt.Errorf("attach point %s: %w", id, domain.ErrResourceNotFound)
	}
	if r.binding == nil {
		return "", nil
	}
	return r.binding.point, nil
}

// Snapshot returns the ops that rebuild the current scene from empty, in creation
// order, together with the revision they reflect.
func (b *Backend) Snapshot() ([]Op, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := make([]*resource, 0, len(b.resources))
	for _, r := range b.resources {
		live = append(live, r)
	}
	slices.SortFunc(live, func(a, c *resource) int {
		return cmp.Compare(a.created, c.created)
	})

	ops := make([]Op, 0, len(live))
	for _, r := range live {
		spec := r.spec
		ops = append(ops, Op{Kind: OpCreate, Revision: r.created, ID: r.id, Spec: &spec})
		if r.binding != nil {
			userID := r.binding.userID
			ops = append(ops, Op{Kind: OpAttach, Revision: b.revision, ID: r.id, UserID: &userID, Point: r.binding.point})
		}
	}
	return ops, b.revision
}

// Len returns the number of live resources.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.resources)
}

func publish(pubs []Publisher, ops ...Op) {
	for _, op := range ops {
		for _, p := range pubs {
			p.Publish(op)
		}
	}
}
