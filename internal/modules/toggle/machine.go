// Package toggle implements the two-state relation between a user and a
// target (another user or a recipe): absent -> present on Add, present ->
// absent on Remove. Repeating a transition is an error, never a no-op.
package toggle

import (
	"context"

	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/metrics"
)

// Store persists (owner, target) pairs for one relation.
type Store interface {
	Exists(ctx context.Context, ownerID, targetID int64) (bool, error)
	Insert(ctx context.Context, ownerID, targetID int64) error
	Delete(ctx context.Context, ownerID, targetID int64) (bool, error)
}

// TargetExists reports whether the target row is present.
type TargetExists func(ctx context.Context, targetID int64) (bool, error)

// UniqueViolation classifies store errors raised by a concurrent insert of
// the same pair.
type UniqueViolation func(error) bool

type Messages struct {
	TargetNotFound string
	Self           string
	AlreadyPresent string
	NotPresent     string
}

type Config struct {
	// Relation labels metrics: follow, favorite, shopping_cart.
	Relation     string
	Store        Store
	TargetExists TargetExists
	IsUnique     UniqueViolation
	ForbidSelf   bool
	Messages     Messages
}

type Machine struct {
	cfg Config
}

func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// Add moves the pair from absent to present.
func (m *Machine) Add(ctx context.Context, ownerID, targetID int64) error {
	if err := m.checkTarget(ctx, targetID); err != nil {
		return err
	}
	if m.cfg.ForbidSelf && ownerID == targetID {
		m.observe("rejected_self")
		return apperr.Conflict(m.cfg.Messages.Self)
	}

	present, err := m.cfg.Store.Exists(ctx, ownerID, targetID)
	if err != nil {
		return apperr.Internal("failed to check relation", err)
	}
	if present {
		m.observe("rejected_present")
		return apperr.Conflict(m.cfg.Messages.AlreadyPresent)
	}

	if err := m.cfg.Store.Insert(ctx, ownerID, targetID); err != nil {
		if m.cfg.IsUnique != nil && m.cfg.IsUnique(err) {
			m.observe("rejected_present")
			return apperr.Conflict(m.cfg.Messages.AlreadyPresent)
		}
		return apperr.Internal("failed to create relation", err)
	}
	m.observe("added")
	return nil
}

// Remove moves the pair from present to absent.
func (m *Machine) Remove(ctx context.Context, ownerID, targetID int64) error {
	if err := m.checkTarget(ctx, targetID); err != nil {
		return err
	}

	removed, err := m.cfg.Store.Delete(ctx, ownerID, targetID)
	if err != nil {
		return apperr.Internal("failed to delete relation", err)
	}
	if !removed {
		m.observe("rejected_absent")
		return apperr.NotFound(m.cfg.Messages.NotPresent)
	}
	m.observe("removed")
	return nil
}

func (m *Machine) checkTarget(ctx context.Context, targetID int64) error {
	if m.cfg.TargetExists == nil {
		return nil
	}
	ok, err := m.cfg.TargetExists(ctx, targetID)
	if err != nil {
		return apperr.Internal("failed to load target", err)
	}
	if !ok {
		return apperr.NotFound(m.cfg.Messages.TargetNotFound)
	}
	return nil
}

func (m *Machine) observe(transition string) {
	metrics.ToggleTransitions.WithLabelValues(m.cfg.Relation, transition).Inc()
}
