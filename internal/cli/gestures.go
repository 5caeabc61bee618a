package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/gesture"
)

// traceEvent is one pointer event in a recorded trace file. Timestamps
// are milliseconds from the start of the trace.
type traceEvent struct {
	Type    string  `json:"type"` // down, move, up, cancel
	Pointer int     `json:"pointer"`
	Device  string  `json:"device"` // mouse, touch
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TimeMs  int64   `json:"time_ms"`
}

// traceSummary aggregates what a replayed trace produced.
type traceSummary struct {
	Events    int           `json:"events"`
	PanX      float64       `json:"pan_x"`
	PanY      float64       `json:"pan_y"`
	ZoomFinal float64       `json:"zoom_final"`
	Taps      []gesture.Tap `json:"taps"`
}

// gesturesCommand creates the gestures command for replaying pointer traces.
func (c *CLI) gesturesCommand() *cobra.Command {
	var (
		pinch   bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "gestures [trace.json]",
		Short: "Replay a recorded pointer trace and report gesture classifications",
		Long: `Replay a recorded pointer trace and report gesture classifications.

The trace file is a JSON array of pointer events. Each event carries a
type (down, move, up, cancel), a pointer id, a device (mouse or touch),
coordinates, and a millisecond timestamp relative to the trace start:

  [
    {"type": "down", "pointer": 1, "device": "mouse", "x": 40, "y": 40, "time_ms": 0},
    {"type": "move", "pointer": 1, "device": "mouse", "x": 52, "y": 47, "time_ms": 30},
    {"type": "up",   "pointer": 1, "device": "mouse", "x": 52, "y": 47, "time_ms": 60}
  ]

The replay reports the accumulated pan, the final zoom factor, and any
taps the trace classified to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGestures(args[0], pinch, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&pinch, "pinch", true, "enable two-finger pinch zoom recognition")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the summary as JSON")

	return cmd
}

// runGestures replays the trace through a gesture controller.
func (c *CLI) runGestures(input string, pinch, jsonOut bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read trace %s: %w", input, err)
	}
	var trace []traceEvent
	if err := json.Unmarshal(data, &trace); err != nil {
		return fmt.Errorf("parse trace %s: %w", input, err)
	}
	if len(trace) == 0 {
		printError("No events in trace %s", input)
		return nil
	}

	opts := cfg.Gesture.GestureOptions()
	opts.PinchEnabled = pinch
	ctrl := gesture.NewController(opts)

	base := time.Now()
	summary := traceSummary{Taps: []gesture.Tap{}}
	for i, te := range trace {
		ev, err := toGestureEvent(te, base)
		if err != nil {
			return fmt.Errorf("trace event %d: %w", i, err)
		}
		effects := ctrl.Handle(ev)
		summary.PanX += effects.PanDX
		summary.PanY += effects.PanDY
		if effects.Tap != nil {
			summary.Taps = append(summary.Taps, *effects.Tap)
		}
	}
	summary.Events = len(trace)
	summary.ZoomFinal = ctrl.Zoom()

	if jsonOut {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printSuccess("Replayed %d events from %s", summary.Events, input)
	printDetail("pan: (%+.1f, %+.1f)", summary.PanX, summary.PanY)
	printDetail("zoom: %.2f", summary.ZoomFinal)
	if len(summary.Taps) == 0 {
		printDetail("taps: none")
	}
	for _, tap := range summary.Taps {
		printDetail("tap at (%.1f, %.1f)", tap.X, tap.Y)
	}

	return nil
}

// toGestureEvent converts a trace entry into a controller event.
func toGestureEvent(te traceEvent, base time.Time) (gesture.Event, error) {
	var typ gesture.EventType
	switch te.Type {
	case "down":
		typ = gesture.PointerDown
	case "move":
		typ = gesture.PointerMove
	case "up":
		typ = gesture.PointerUp
	case "cancel":
		typ = gesture.PointerCancel
	default:
		return gesture.Event{}, fmt.Errorf("unknown event type %q", te.Type)
	}

	var dev gesture.Device
	switch te.Device {
	case "mouse", "":
		dev = gesture.DeviceMouse
	case "touch":
		dev = gesture.DeviceTouch
	default:
		return gesture.Event{}, fmt.Errorf("unknown device %q", te.Device)
	}

	return gesture.Event{
		Type:    typ,
		Pointer: te.Pointer,
		Device:  dev,
		X:       te.X,
		Y:       te.Y,
		Time:    base.Add(time.Duration(te.TimeMs) * time.Millisecond),
	}, nil
}
