package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/explorer"
	"github.com/matzehuels/orbit/pkg/gesture"
)

// listDimStyle renders secondary chrome like help lines.
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// worldSpan is the extent of the layout space along each axis.
const worldSpan = 100.0

// exploreFixture is the file format for offline exploration: a root
// topic plus a static table of children per topic name.
type exploreFixture struct {
	Root   string              `json:"root"`
	Topics map[string][]string `json:"topics"`
}

// exploreCommand creates the interactive exploration command.
func (c *CLI) exploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [fixture.json]",
		Short: "Explore a topic fixture interactively in the terminal",
		Long: `Explore a topic fixture interactively in the terminal.

The fixture file names a root topic and a static table of children:

  {
    "root": "Music",
    "topics": {
      "Music": ["Jazz", "Classical", "Electronic"],
      "Jazz": ["Bebop", "Swing"]
    }
  }

Levels materialize lazily as you navigate. Click a bubble to descend
into it, press u to go back up, and drag with the mouse to pan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runExplore loads the fixture and runs the bubbletea program.
func (c *CLI) runExplore(ctx context.Context, input string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", input, err)
	}
	var fx exploreFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("parse fixture %s: %w", input, err)
	}
	if fx.Root == "" {
		return fmt.Errorf("fixture %s names no root topic", input)
	}

	store, err := newCache(cfg.Cache, false)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()
	resolver := explorer.NewCachingResolver(explorer.NewStaticResolver(fx.Topics), store, nil)

	sink := &navSink{}
	session := explorer.NewSession(fx.Root, resolver, explorer.Options{
		Logger:     c.Logger,
		Layout:     cfg.Layout.LayoutOptions(),
		Gesture:    cfg.Gesture.GestureOptions(),
		OnNavigate: sink.capture,
	})

	model := newExploreModel(ctx, session, sink)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}

// navSink captures the navigation produced by the most recent pointer
// event. HandlePointer invokes the sink synchronously, so reading the
// field right after the call is race-free.
type navSink struct {
	nav *explorer.Navigation
}

func (n *navSink) capture(v explorer.Navigation) {
	n.nav = &v
}

func (n *navSink) take() *explorer.Navigation {
	nav := n.nav
	n.nav = nil
	return nav
}

// materializedMsg reports a finished materialization.
type materializedMsg struct {
	err error
}

// exploreModel is the bubbletea model driving a session.
type exploreModel struct {
	ctx     context.Context
	session *explorer.Session
	sink    *navSink

	width   int
	height  int
	loading bool
	status  string
}

func newExploreModel(ctx context.Context, session *explorer.Session, sink *navSink) exploreModel {
	return exploreModel{
		ctx:     ctx,
		session: session,
		sink:    sink,
		width:   80,
		height:  24,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.materializeCmd(nil)
}

// materializeCmd fetches children for path off the update loop.
func (m exploreModel) materializeCmd(path domain.Path) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return materializedMsg{err: session.Materialize(ctx, path)}
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case materializedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m exploreModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "u", "backspace":
		path := m.session.Path()
		if len(path) == 0 {
			return m, nil
		}
		if err := m.session.Visit(path[:len(path)-1]); err != nil {
			m.status = err.Error()
		}
		return m, nil
	case "r":
		m.loading = true
		session, ctx, path := m.session, m.ctx, m.session.Path()
		return m, func() tea.Msg {
			return materializedMsg{err: session.LoadMore(ctx, path)}
		}
	case "+", "=":
		m.adjustZoom(1.1)
		return m, nil
	case "-":
		m.adjustZoom(1 / 1.1)
		return m, nil
	case "left":
		m.adjustPan(5, 0)
		return m, nil
	case "right":
		m.adjustPan(-5, 0)
		return m, nil
	case "up":
		m.adjustPan(0, 5)
		return m, nil
	case "down":
		m.adjustPan(0, -5)
		return m, nil
	}
	return m, nil
}

// adjustZoom rescales the view around the current state.
func (m *exploreModel) adjustZoom(factor float64) {
	state := m.session.Snapshot()
	state.Viewport.Zoom *= factor
	if err := m.session.Restore(state); err != nil {
		m.status = err.Error()
	}
}

// adjustPan nudges the view by a fixed step in layout units.
func (m *exploreModel) adjustPan(dx, dy float64) {
	state := m.session.Snapshot()
	state.Viewport.PanX += dx
	state.Viewport.PanY += dy
	if err := m.session.Restore(state); err != nil {
		m.status = err.Error()
	}
}

// updateMouse converts terminal mouse input into pointer events and
// descends into a bubble when a tap lands on one.
func (m exploreModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	ev, ok := m.toPointerEvent(msg)
	if !ok {
		return m, nil
	}

	m.session.HandlePointer(ev)
	nav := m.sink.take()
	if nav == nil || nav.Node == nil {
		return m, nil
	}

	if err := m.session.Visit(nav.Path); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.loading = true
	m.status = ""
	return m, m.materializeCmd(nav.Path)
}

// toPointerEvent maps a terminal mouse message into layout-space
// coordinates. Terminal mice have no touch semantics, so every event
// reports as a mouse device.
func (m exploreModel) toPointerEvent(msg tea.MouseMsg) (gesture.Event, bool) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionMotion {
		return gesture.Event{}, false
	}

	var typ gesture.EventType
	switch msg.Action {
	case tea.MouseActionPress:
		typ = gesture.PointerDown
	case tea.MouseActionMotion:
		typ = gesture.PointerMove
	case tea.MouseActionRelease:
		typ = gesture.PointerUp
	default:
		return gesture.Event{}, false
	}

	return gesture.Event{
		Type:    typ,
		Pointer: 1,
		Device:  gesture.DeviceMouse,
		X:       float64(msg.X) / float64(max(m.width, 1)) * worldSpan,
		Y:       float64(msg.Y) / float64(max(m.height-2, 1)) * worldSpan,
		Time:    time.Now(),
	}, true
}

func (m exploreModel) View() string {
	placed := m.session.LayoutChildren(m.ctx)
	node := m.session.Node()
	viewport := m.session.Viewport()

	canvasH := m.height - 2
	if canvasH < 3 {
		canvasH = 3
	}

	grid := make([][]rune, canvasH)
	for i := range grid {
		grid[i] = make([]rune, m.width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Center label goes at the visual middle of the space.
	m.blit(grid, worldSpan/2, worldSpan/2, viewport, "("+node.Name+")")
	for _, p := range placed {
		m.blit(grid, p.X, p.Y, viewport, p.Name)
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}
	b.WriteString(m.footerLine(len(placed)))
	return b.String()
}

// blit writes label centered at the world coordinate, transformed
// through the viewport into terminal cells.
func (m exploreModel) blit(grid [][]rune, worldX, worldY float64, vp explorer.Viewport, label string) {
	screenX := worldX*vp.Zoom + vp.PanX
	screenY := worldY*vp.Zoom + vp.PanY

	col := int(screenX/worldSpan*float64(m.width)) - len(label)/2
	row := int(screenY / worldSpan * float64(len(grid)))
	if row < 0 || row >= len(grid) {
		return
	}
	for i, r := range label {
		c := col + i
		if c < 0 || c >= m.width {
			continue
		}
		grid[row][c] = r
	}
}

func (m exploreModel) headerLine() string {
	path := m.session.Path()
	crumbs := m.session.Tree().Name
	if len(path) > 0 {
		crumbs += " / " + path.String()
	}
	return StyleTitle.Render(" " + crumbs)
}

func (m exploreModel) footerLine(bubbles int) string {
	help := "click: descend  u: up  r: more  +/-: zoom  arrows: pan  q: quit"
	state := fmt.Sprintf("%d bubbles  zoom %.2f", bubbles, m.session.Viewport().Zoom)
	if m.loading {
		state = "loading…"
	}
	if m.status != "" {
		state = m.status
	}
	gap := m.width - lipgloss.Width(help) - lipgloss.Width(state) - 2
	if gap < 1 {
		gap = 1
	}
	return listDimStyle.Render(" "+help) + strings.Repeat(" ", gap) + listDimStyle.Render(state)
}
