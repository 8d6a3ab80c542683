package runtime

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

func (n *Navigator) base(s *search, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: n.now(),
		Type:      t,
		Root:      s.root,
		Budget:    s.budget,
	}
}

func (n *Navigator) emitMove(ctx context.Context, s *search, t domain.EventType, from, to domain.Path, levels int) {
	hook := n.hooks.OnDescend
	if t == domain.EventBacktrack {
		hook = n.hooks.OnBacktrack
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.MoveEvent{
		EventBase: n.base(s, t),
		From:      from.Clone(),
		To:        to.Clone(),
		Levels:    levels,
	})
}

func (n *Navigator) emitDeadEnd(ctx context.Context, s *search, reason string) {
	if n.hooks.OnDeadEnd == nil {
		return
	}
	n.hooks.OnDeadEnd(ctx, &domain.DeadEndEvent{
		EventBase: n.base(s, domain.EventDeadEnd),
		Path:      s.path.Clone(),
		Reason:    reason,
	})
}

func (n *Navigator) emitCategorySwitch(ctx context.Context, s *search, from string, reused bool) {
	if n.hooks.OnCategorySwitch == nil {
		return
	}
	n.hooks.OnCategorySwitch(ctx, &domain.CategoryEvent{
		EventBase: n.base(s, domain.EventCategorySwitch),
		From:      from,
		To:        s.root,
		Reused:    reused,
	})
}

func (n *Navigator) emitOutcome(ctx context.Context, s *search, t domain.EventType, outcome domain.Outcome) {
	hook := n.hooks.OnFound
	if t == domain.EventExhausted {
		hook = n.hooks.OnExhausted
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.OutcomeEvent{
		EventBase: n.base(s, t),
		Outcome:   outcome,
	})
}
