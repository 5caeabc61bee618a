package config

import (
	"github.com/matzehuels/orbit/pkg/gesture"
	"github.com/matzehuels/orbit/pkg/layout"
)

// LayoutOptions converts the layout section into engine options.
// Zero-valued fields fall through to the engine defaults.
func (l Layout) LayoutOptions() layout.Options {
	return layout.Options{
		Iterations:   l.Iterations,
		PairMargin:   l.PairMargin,
		CenterMargin: l.CenterMargin,
		Pull:         l.Pull,
		Jitter:       l.Jitter,
		Seed:         l.Seed,
	}
}

// GestureOptions converts the gesture section into controller options.
// Zero-valued fields fall through to the controller defaults.
func (g Gesture) GestureOptions() gesture.Options {
	return gesture.Options{
		PinchEnabled:       g.PinchEnabled,
		TouchDragThreshold: g.TouchDragThreshold,
		ClickSlop:          g.ClickSlop,
		TapMaxDuration:     g.TapMaxDuration(),
		ZoomMin:            g.ZoomMin,
		ZoomMax:            g.ZoomMax,
	}
}
