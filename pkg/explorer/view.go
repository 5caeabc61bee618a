package explorer

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/gesture"
	"github.com/matzehuels/orbit/pkg/layout"
	"github.com/matzehuels/orbit/pkg/observability"
)

// Viewport is the ephemeral pan/zoom state of a session.
// Pan is in layout-space units; zoom is a plain scale factor.
type Viewport struct {
	PanX float64 `json:"pan_x" bson:"pan_x"`
	PanY float64 `json:"pan_y" bson:"pan_y"`
	Zoom float64 `json:"zoom" bson:"zoom"`
}

// DefaultViewport is the identity view: no pan, unit zoom.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1.0}
}

// ViewState is the caller-persistable part of a session: where the user
// is and how they are looking at it. The tree itself is snapshotted
// separately (see pkg/store).
type ViewState struct {
	Path     domain.Path `json:"path" bson:"path"`
	Viewport Viewport    `json:"viewport" bson:"viewport"`
}

// Viewport returns the current pan/zoom state.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Snapshot captures the current view state for later restoration.
func (s *Session) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewState{
		Path:     append(domain.Path(nil), s.path...),
		Viewport: s.viewport,
	}
}

// Restore reinstates a previously captured view state. The path must
// resolve against the current tree.
func (s *Session) Restore(state ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := domain.Find(s.tree, state.Path); !ok {
		return errors.New(errors.ErrCodeInvalidPath, "path %q does not resolve", state.Path.String())
	}
	s.path = append(domain.Path(nil), state.Path...)
	s.viewport = state.Viewport
	s.gestures.SetZoom(state.Viewport.Zoom)
	return nil
}

// LayoutChildren computes positions for the visited node's children and
// writes them back into the tree so they persist across updates. An
// unresolved or empty node yields an empty result, never an error.
func (s *Session) LayoutChildren(ctx context.Context) []layout.Placed {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := domain.Find(s.tree, s.path)
	if !ok || !node.Children.Resolved() || node.Children.Len() == 0 {
		s.placed = nil
		return nil
	}

	children := node.Children.Nodes()
	items := make([]layout.Item, len(children))
	for i, c := range children {
		items[i] = layout.Item{ID: c.ID, Name: c.Name}
		if c.Position != nil {
			items[i].Seed = &layout.Point{X: c.Position.X, Y: c.Position.Y}
		}
	}

	// A stable layout stays put: when the children and their written-back
	// positions match the previous result exactly, re-relaxing would only
	// jiggle them.
	if s.placedCenter == node.Name && placedMatches(s.placed, items) {
		observability.Layout().OnLayoutComplete(ctx, node.Name, len(items), 0, true)
		return s.placed
	}

	observability.Layout().OnLayoutStart(ctx, node.Name, len(items))
	start := time.Now()
	before := s.placed
	placed := s.engine.Layout(node.Name, items)
	memoized := len(before) > 0 && len(placed) > 0 && &before[0] == &placed[0]
	observability.Layout().OnLayoutComplete(ctx, node.Name, len(items), time.Since(start), memoized)

	if !memoized {
		updated := make([]*domain.Node, len(children))
		for i, c := range children {
			clone := domain.Clone(c)
			clone.Position = &domain.Position{X: placed[i].X, Y: placed[i].Y}
			updated[i] = clone
		}
		s.tree = domain.ReplaceChildren(s.tree, s.path, updated)
	}
	s.placed = placed
	s.placedCenter = node.Name
	return placed
}

// placedMatches reports whether items are exactly the previous layout:
// same identities in order, each seeded at its prior output position.
func placedMatches(placed []layout.Placed, items []layout.Item) bool {
	if len(placed) == 0 || len(placed) != len(items) {
		return false
	}
	for i, it := range items {
		if it.ID != placed[i].ID || it.Seed == nil {
			return false
		}
		if it.Seed.X != placed[i].X || it.Seed.Y != placed[i].Y {
			return false
		}
	}
	return true
}

// HandlePointer feeds one pointer event through the gesture controller
// and applies its effects to the viewport. Taps are hit-tested against
// the last layout and delivered to the navigation sink.
func (s *Session) HandlePointer(ev gesture.Event) gesture.Effects {
	s.mu.Lock()
	effects := s.gestures.Handle(ev)

	s.viewport.PanX += effects.PanDX
	s.viewport.PanY += effects.PanDY
	if effects.ZoomSet {
		s.viewport.Zoom = effects.Zoom
	}

	var nav *Navigation
	if effects.Tap != nil {
		nav = s.hitTest(effects.Tap.X, effects.Tap.Y)
	}
	sink := s.onNavigate
	s.mu.Unlock()

	if nav != nil && sink != nil {
		sink(*nav)
	}
	return effects
}

// hitTest maps a tap from screen space to layout space and finds the
// child bubble under it, if any. Callers hold s.mu.
func (s *Session) hitTest(x, y float64) *Navigation {
	if s.viewport.Zoom == 0 {
		return nil
	}
	wx := (x - s.viewport.PanX) / s.viewport.Zoom
	wy := (y - s.viewport.PanY) / s.viewport.Zoom

	nav := Navigation{X: wx, Y: wy}
	for _, p := range s.placed {
		if math.Hypot(wx-p.X, wy-p.Y) <= p.Radius {
			node, ok := domain.Find(s.tree, s.path)
			if !ok {
				break
			}
			child, ok := node.Child(p.Name)
			if !ok {
				break
			}
			nav.Path = append(append(domain.Path(nil), s.path...), p.Name)
			nav.Node = child
			break
		}
	}
	return &nav
}
