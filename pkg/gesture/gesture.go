package gesture

import (
	"math"
	"time"
)

// Device classifies the input hardware behind pointer 0. The device of
// the first pointer in an interaction is authoritative for the whole
// interaction: mouse and touch have different tap/drag affordances.
type Device int

const (
	// DeviceMouse is a precise pointer with reliable hover and a primary
	// button. It commits to a drag on the first move and has no tap
	// duration gate.
	DeviceMouse Device = iota
	// DeviceTouch is a finger. It commits to a drag only after clearly
	// intentional movement, and taps must be short to distinguish them
	// from press-and-hold.
	DeviceTouch
)

// EventType enumerates pointer events.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
	PointerCancel
)

// Event is one pointer event. Coordinates are in whatever unit the
// caller pans in; thresholds in Options use the same unit.
type Event struct {
	Type    EventType
	Pointer int // platform pointer identifier
	Device  Device
	X, Y    float64
	Time    time.Time
}

// Effects is what a single event produced. The controller emits pan as
// incremental deltas rather than absolute positions, so pan accumulates
// correctly even if the pointer re-enters after leaving the hit region.
type Effects struct {
	// PanDX, PanDY are the pan deltas to apply, zero when not panning.
	PanDX, PanDY float64

	// ZoomSet reports that Zoom carries a new zoom factor.
	ZoomSet bool
	Zoom    float64

	// Tap is non-nil when the interaction ended in a tap. It is already
	// gated on the drag-committed flag: a committed drag never taps.
	Tap *Tap
}

// Tap is a classified tap at the release position.
type Tap struct {
	X, Y float64
}

// Default thresholds. Units match the event coordinate space.
const (
	DefaultTouchDragThreshold = 10.0
	DefaultClickSlop          = 5.0
	DefaultTapMaxDuration     = 150 * time.Millisecond
	DefaultZoomMin            = 0.6
	DefaultZoomMax            = 2.5
)

// Options configures a Controller. Zero fields fall back to defaults;
// PinchEnabled defaults to off because it is a capability switch, not a
// threshold.
type Options struct {
	// PinchEnabled turns on two-finger zoom recognition.
	PinchEnabled bool

	// TouchDragThreshold is the displacement from the down-position at
	// which a touch interaction commits to a drag.
	TouchDragThreshold float64

	// ClickSlop is the residual displacement under which a mouse release
	// un-commits a drag, so a jittery click still counts as a click.
	ClickSlop float64

	// TapMaxDuration is the longest down-to-up interval a touch tap may
	// take. Longer presses are holds, not navigation taps.
	TapMaxDuration time.Duration

	// ZoomMin and ZoomMax clamp the pinch zoom factor.
	ZoomMin, ZoomMax float64
}

func (o *Options) setDefaults() {
	if o.TouchDragThreshold == 0 {
		o.TouchDragThreshold = DefaultTouchDragThreshold
	}
	if o.ClickSlop == 0 {
		o.ClickSlop = DefaultClickSlop
	}
	if o.TapMaxDuration == 0 {
		o.TapMaxDuration = DefaultTapMaxDuration
	}
	if o.ZoomMin == 0 {
		o.ZoomMin = DefaultZoomMin
	}
	if o.ZoomMax == 0 {
		o.ZoomMax = DefaultZoomMax
	}
}

type pointer struct {
	id   int
	x, y float64
}

type pinchState struct {
	startDist   float64
	zoomAtStart float64
}

// Controller is the pointer-event state machine. It consumes a stream
// of down/move/up/cancel events and classifies the interaction into
// pan, pinch-zoom, or tap.
//
// The controller is pure state over events: it touches no platform API,
// so it is testable without an input device and portable across
// platforms that expose pointer events differently. It is not safe for
// concurrent use; events from a single input source are inherently
// serial.
type Controller struct {
	opts Options

	pointers map[int]*pointer
	order    []int // pointer ids in down order

	device   Device // device of the interaction's first pointer
	dragging bool

	downX, downY float64
	downTime     time.Time
	lastX, lastY float64

	pinch *pinchState
	zoom  float64
}

// NewController creates a controller at zoom 1.0.
func NewController(opts Options) *Controller {
	opts.setDefaults()
	return &Controller{
		opts:     opts,
		pointers: make(map[int]*pointer),
		zoom:     1.0,
	}
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 { return c.zoom }

// SetZoom restores a zoom factor, clamped to the configured range.
// Callers use this when restoring snapshotted view state.
func (c *Controller) SetZoom(z float64) { c.zoom = c.clampZoom(z) }

// Dragging reports whether the current interaction has committed to a
// drag. Consumers must suppress child selection while this is true.
func (c *Controller) Dragging() bool { return c.dragging }

// ActivePointers returns the number of tracked pointers.
func (c *Controller) ActivePointers() int { return len(c.pointers) }

// Reset clears all pointer state, keeping the zoom factor.
func (c *Controller) Reset() {
	c.pointers = make(map[int]*pointer)
	c.order = c.order[:0]
	c.dragging = false
	c.pinch = nil
}

// Handle consumes one event and returns its effects. Events for unknown
// pointer ids (an up without a down, moves after cancel) are ignored:
// noisy devices are expected, and malformed input is never an error.
func (c *Controller) Handle(ev Event) Effects {
	switch ev.Type {
	case PointerDown:
		return c.handleDown(ev)
	case PointerMove:
		return c.handleMove(ev)
	case PointerUp, PointerCancel:
		return c.handleUp(ev)
	}
	return Effects{}
}

func (c *Controller) handleDown(ev Event) Effects {
	if _, tracked := c.pointers[ev.Pointer]; tracked {
		// Duplicate down: refresh position, nothing else.
		c.pointers[ev.Pointer].x, c.pointers[ev.Pointer].y = ev.X, ev.Y
		return Effects{}
	}
	c.pointers[ev.Pointer] = &pointer{id: ev.Pointer, x: ev.X, y: ev.Y}
	c.order = append(c.order, ev.Pointer)

	switch len(c.pointers) {
	case 1:
		c.device = ev.Device
		c.dragging = false
		c.pinch = nil
		c.downX, c.downY = ev.X, ev.Y
		c.downTime = ev.Time
		c.lastX, c.lastY = ev.X, ev.Y
	case 2:
		if c.opts.PinchEnabled {
			c.pinch = &pinchState{
				startDist:   c.pairDistance(),
				zoomAtStart: c.zoom,
			}
			// Panning is suspended while pinching.
			c.dragging = false
		}
	}
	return Effects{}
}

func (c *Controller) handleMove(ev Event) Effects {
	p, tracked := c.pointers[ev.Pointer]
	if !tracked {
		return Effects{}
	}
	p.x, p.y = ev.X, ev.Y

	if c.pinch != nil && len(c.pointers) >= 2 {
		dist := c.pairDistance()
		if c.pinch.startDist > 0 && dist > 0 {
			c.zoom = c.clampZoom(c.pinch.zoomAtStart * dist / c.pinch.startDist)
			return Effects{ZoomSet: true, Zoom: c.zoom}
		}
		return Effects{}
	}

	if len(c.pointers) != 1 {
		// Extra pointers with pinch gating off: hold position, no pan.
		return Effects{}
	}

	dx, dy := ev.X-c.lastX, ev.Y-c.lastY
	c.lastX, c.lastY = ev.X, ev.Y

	if !c.dragging {
		switch c.device {
		case DeviceMouse:
			// A primary-button device commits on the first move.
			c.dragging = true
		case DeviceTouch:
			disp := math.Hypot(ev.X-c.downX, ev.Y-c.downY)
			if disp > c.opts.TouchDragThreshold {
				c.dragging = true
			}
		}
		if !c.dragging {
			return Effects{}
		}
	}
	return Effects{PanDX: dx, PanDY: dy}
}

func (c *Controller) handleUp(ev Event) Effects {
	p, tracked := c.pointers[ev.Pointer]
	if !tracked {
		return Effects{}
	}
	upX, upY := p.x, p.y
	if ev.Type == PointerUp {
		upX, upY = ev.X, ev.Y
	}
	delete(c.pointers, ev.Pointer)
	for i, id := range c.order {
		if id == ev.Pointer {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	switch len(c.pointers) {
	case 1:
		// Continued one-finger contact after a pinch is an immediate
		// pan, never a fresh tap candidate.
		rest := c.pointers[c.order[0]]
		c.pinch = nil
		c.dragging = true
		c.downX, c.downY = rest.x, rest.y
		c.downTime = ev.Time
		c.lastX, c.lastY = rest.x, rest.y
		return Effects{}
	case 0:
		c.pinch = nil
		if ev.Type == PointerCancel {
			// An aborted interaction never navigates.
			c.dragging = false
			return Effects{}
		}
		return c.classifyTap(upX, upY, ev.Time)
	}
	return Effects{}
}

// classifyTap decides whether the released interaction was a tap.
func (c *Controller) classifyTap(upX, upY float64, upTime time.Time) Effects {
	disp := math.Hypot(upX-c.downX, upY-c.downY)

	switch c.device {
	case DeviceMouse:
		// Tiny jitter during a click must not suppress click semantics:
		// a small residual displacement overrides a committed drag.
		if disp < c.opts.ClickSlop {
			c.dragging = false
		}
		if c.dragging {
			return Effects{}
		}
	case DeviceTouch:
		if c.dragging {
			return Effects{}
		}
		// Press-and-hold is an inspection gesture, not navigation.
		if upTime.Sub(c.downTime) >= c.opts.TapMaxDuration {
			return Effects{}
		}
	}
	return Effects{Tap: &Tap{X: upX, Y: upY}}
}

// pairDistance is the distance between the two earliest active pointers.
func (c *Controller) pairDistance() float64 {
	if len(c.order) < 2 {
		return 0
	}
	a, b := c.pointers[c.order[0]], c.pointers[c.order[1]]
	return math.Hypot(b.x-a.x, b.y-a.y)
}

func (c *Controller) clampZoom(z float64) float64 {
	return math.Min(c.opts.ZoomMax, math.Max(c.opts.ZoomMin, z))
}
