// Package gesture classifies raw pointer-event streams into pan,
// pinch-zoom, and tap interactions.
//
// A single "dragging" boolean is not enough for this job: mouse and
// touch have different affordances (a mouse has reliable hover/click
// separation, a finger does not), and pinch and pan must stay mutually
// exclusive even when the pointer count changes mid-interaction. The
// [Controller] therefore tracks the device class of the interaction's
// first pointer and keeps distinct single-pointer and pinch states.
//
// The controller is a pure state-transition function over [Event]
// values; feeding it recorded traces reproduces classifications exactly,
// which is how the package is tested and how `orbit gestures` replays
// traces offline.
package gesture
