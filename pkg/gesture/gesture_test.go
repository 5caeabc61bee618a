package gesture

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ev(typ EventType, id int, dev Device, x, y float64, after time.Duration) Event {
	return Event{Type: typ, Pointer: id, Device: dev, X: x, Y: y, Time: t0.Add(after)}
}

func TestMouseClickVsDrag(t *testing.T) {
	tests := []struct {
		name    string
		move    float64
		wantTap bool
	}{
		{name: "3 unit jitter is a click", move: 3, wantTap: true},
		{name: "50 unit move is a drag", move: 50, wantTap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Options{})
			c.Handle(ev(PointerDown, 0, DeviceMouse, 100, 100, 0))
			c.Handle(ev(PointerMove, 0, DeviceMouse, 100+tt.move, 100, 10*time.Millisecond))
			fx := c.Handle(ev(PointerUp, 0, DeviceMouse, 100+tt.move, 100, 20*time.Millisecond))

			if got := fx.Tap != nil; got != tt.wantTap {
				t.Errorf("tap = %v, want %v", got, tt.wantTap)
			}
			if tt.wantTap && c.Dragging() {
				t.Error("small jitter should un-commit the drag")
			}
		})
	}
}

func TestMouseNoDurationGate(t *testing.T) {
	// A long press-and-release without movement still clicks on a mouse.
	c := NewController(Options{})
	c.Handle(ev(PointerDown, 0, DeviceMouse, 10, 10, 0))
	fx := c.Handle(ev(PointerUp, 0, DeviceMouse, 10, 10, 2*time.Second))
	if fx.Tap == nil {
		t.Error("mouse clicks are not duration-gated")
	}
}

func TestTouchTapVsHold(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantTap bool
	}{
		{name: "80ms is a tap", elapsed: 80 * time.Millisecond, wantTap: true},
		{name: "300ms is a hold", elapsed: 300 * time.Millisecond, wantTap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Options{})
			c.Handle(ev(PointerDown, 0, DeviceTouch, 40, 40, 0))
			c.Handle(ev(PointerMove, 0, DeviceTouch, 44, 43, tt.elapsed/2))
			fx := c.Handle(ev(PointerUp, 0, DeviceTouch, 44, 43, tt.elapsed))

			if got := fx.Tap != nil; got != tt.wantTap {
				t.Errorf("tap = %v, want %v", got, tt.wantTap)
			}
		})
	}
}

func TestTouchDragThreshold(t *testing.T) {
	c := NewController(Options{})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 0, 0, 0))

	// Under the threshold: no pan, no drag commitment.
	fx := c.Handle(ev(PointerMove, 0, DeviceTouch, 6, 0, 10*time.Millisecond))
	if fx.PanDX != 0 || fx.PanDY != 0 {
		t.Errorf("pan before commit = (%v,%v), want (0,0)", fx.PanDX, fx.PanDY)
	}
	if c.Dragging() {
		t.Error("6 units must not commit a touch drag")
	}

	// Crossing the threshold commits; the committing move already pans.
	fx = c.Handle(ev(PointerMove, 0, DeviceTouch, 15, 0, 20*time.Millisecond))
	if !c.Dragging() {
		t.Error("15 units must commit a touch drag")
	}
	if fx.PanDX != 9 {
		t.Errorf("committing move delta = %v, want 9 (from previous position)", fx.PanDX)
	}

	// Committed drags suppress taps regardless of timing.
	fx = c.Handle(ev(PointerUp, 0, DeviceTouch, 15, 0, 30*time.Millisecond))
	if fx.Tap != nil {
		t.Error("committed touch drag must not tap")
	}
}

func TestMousePanAccumulatesDeltas(t *testing.T) {
	c := NewController(Options{})
	c.Handle(ev(PointerDown, 0, DeviceMouse, 0, 0, 0))

	var panX, panY float64
	moves := [][2]float64{{10, 5}, {25, 5}, {25, 30}}
	for i, m := range moves {
		fx := c.Handle(ev(PointerMove, 0, DeviceMouse, m[0], m[1], time.Duration(i+1)*10*time.Millisecond))
		panX += fx.PanDX
		panY += fx.PanDY
	}

	if panX != 25 || panY != 30 {
		t.Errorf("accumulated pan = (%v,%v), want (25,30)", panX, panY)
	}
}

func TestPinchZoom(t *testing.T) {
	c := NewController(Options{PinchEnabled: true})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 100, 100, 0))
	c.Handle(ev(PointerDown, 1, DeviceTouch, 200, 100, 10*time.Millisecond))

	// Spread from 100 to 150 units: zoom 1.0 → 1.5.
	fx := c.Handle(ev(PointerMove, 1, DeviceTouch, 250, 100, 20*time.Millisecond))
	if !fx.ZoomSet || math.Abs(fx.Zoom-1.5) > 1e-9 {
		t.Errorf("zoom = %v (set=%v), want 1.5", fx.Zoom, fx.ZoomSet)
	}

	// Spreading far beyond the range clamps.
	fx = c.Handle(ev(PointerMove, 1, DeviceTouch, 500, 100, 30*time.Millisecond))
	if fx.Zoom != DefaultZoomMax {
		t.Errorf("zoom = %v, want clamped to %v", fx.Zoom, DefaultZoomMax)
	}

	// Pinching in clamps at the floor.
	fx = c.Handle(ev(PointerMove, 1, DeviceTouch, 140, 100, 40*time.Millisecond))
	if fx.Zoom != DefaultZoomMin {
		t.Errorf("zoom = %v, want clamped to %v", fx.Zoom, DefaultZoomMin)
	}
}

func TestPinchIndependentOfTranslation(t *testing.T) {
	c := NewController(Options{PinchEnabled: true})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 100, 100, 0))
	c.Handle(ev(PointerDown, 1, DeviceTouch, 200, 100, 5*time.Millisecond))

	// Both pointers translate together, separation unchanged: the pan
	// offset must not move and zoom must stay at its starting factor.
	fx1 := c.Handle(ev(PointerMove, 0, DeviceTouch, 150, 140, 10*time.Millisecond))
	fx2 := c.Handle(ev(PointerMove, 1, DeviceTouch, 250, 140, 15*time.Millisecond))

	for i, fx := range []Effects{fx1, fx2} {
		if fx.PanDX != 0 || fx.PanDY != 0 {
			t.Errorf("move %d produced pan (%v,%v) during pinch", i, fx.PanDX, fx.PanDY)
		}
	}
	if fx2.ZoomSet && math.Abs(fx2.Zoom-1.0) > 1e-9 {
		t.Errorf("translation-only pinch changed zoom to %v", fx2.Zoom)
	}
}

func TestPinchToSinglePointerResumesAsPan(t *testing.T) {
	c := NewController(Options{PinchEnabled: true})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 100, 100, 0))
	c.Handle(ev(PointerDown, 1, DeviceTouch, 200, 100, 5*time.Millisecond))
	c.Handle(ev(PointerUp, 0, DeviceTouch, 100, 100, 50*time.Millisecond))

	if !c.Dragging() {
		t.Fatal("remaining finger after a pinch must resume as a committed pan")
	}

	// The resumed pan is seeded from the survivor's last position.
	fx := c.Handle(ev(PointerMove, 1, DeviceTouch, 210, 110, 60*time.Millisecond))
	if fx.PanDX != 10 || fx.PanDY != 10 {
		t.Errorf("resumed pan delta = (%v,%v), want (10,10)", fx.PanDX, fx.PanDY)
	}

	// And releasing it must never classify as a tap.
	fx = c.Handle(ev(PointerUp, 1, DeviceTouch, 210, 110, 70*time.Millisecond))
	if fx.Tap != nil {
		t.Error("release after pinch must not tap")
	}
}

func TestPinchGatingDisabled(t *testing.T) {
	c := NewController(Options{PinchEnabled: false})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 100, 100, 0))
	c.Handle(ev(PointerDown, 1, DeviceTouch, 200, 100, 5*time.Millisecond))

	fx := c.Handle(ev(PointerMove, 1, DeviceTouch, 300, 100, 10*time.Millisecond))
	if fx.ZoomSet {
		t.Error("zoom emitted while pinch gating is off")
	}
	if c.Zoom() != 1.0 {
		t.Errorf("zoom = %v, want 1.0", c.Zoom())
	}
}

func TestIgnoresUntrackedPointers(t *testing.T) {
	c := NewController(Options{})

	// Up and move without a down: no effects, no panic.
	if fx := c.Handle(ev(PointerUp, 7, DeviceMouse, 1, 1, 0)); fx != (Effects{}) {
		t.Errorf("untracked up produced %+v", fx)
	}
	if fx := c.Handle(ev(PointerMove, 7, DeviceMouse, 2, 2, 0)); fx != (Effects{}) {
		t.Errorf("untracked move produced %+v", fx)
	}
	if c.ActivePointers() != 0 {
		t.Errorf("ActivePointers = %d, want 0", c.ActivePointers())
	}
}

func TestCancelCleansUp(t *testing.T) {
	c := NewController(Options{})
	c.Handle(ev(PointerDown, 0, DeviceTouch, 10, 10, 0))
	fx := c.Handle(ev(PointerCancel, 0, DeviceTouch, 0, 0, 20*time.Millisecond))

	if fx.Tap != nil {
		t.Error("cancel must not classify as a tap")
	}
	if c.ActivePointers() != 0 {
		t.Errorf("ActivePointers after cancel = %d, want 0", c.ActivePointers())
	}
}

func TestSetZoomClamps(t *testing.T) {
	c := NewController(Options{})
	c.SetZoom(9)
	if c.Zoom() != DefaultZoomMax {
		t.Errorf("SetZoom(9) = %v, want %v", c.Zoom(), DefaultZoomMax)
	}
	c.SetZoom(0.1)
	if c.Zoom() != DefaultZoomMin {
		t.Errorf("SetZoom(0.1) = %v, want %v", c.Zoom(), DefaultZoomMin)
	}
}
