// Package launcher implements the interactive search TUI: the Bubble Tea
// model owns the search session (mode, query, generation, results) and
// coordinates the synchronous application index, the asynchronous
// filesystem walker, usage-weighted ranking, and the launch action.
package launcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/flit/internal/apps"
	"github.com/runger/flit/internal/config"
	"github.com/runger/flit/internal/fswalk"
	"github.com/runger/flit/internal/launch"
	"github.com/runger/flit/internal/usage"
)

// Mode selects which backend answers the query.
type Mode int

const (
	// ModeApps searches the application index.
	ModeApps Mode = iota
	// ModeFiles searches the filesystem under the configured root.
	ModeFiles
)

// String returns the mode label shown in the status line.
func (m Mode) String() string {
	if m == ModeFiles {
		return "Files"
	}
	return "Apps"
}

// Recorder persists launch history. *usage.Store implements it; tests
// substitute fakes.
type Recorder interface {
	RecordLaunch(ctx context.Context, key string, mode usage.Mode) error
	SetPreferredMode(ctx context.Context, key string, mode usage.Mode) error
}

// walkMsg wraps a walker message for the Bubble Tea runtime.
type walkMsg struct{ msg fswalk.Msg }

// debounceMsg fires after the debounce timer expires; only a matching id
// triggers a walk.
type debounceMsg struct{ id uint64 }

// initMsg is sent by Init() to trigger the first search via Update(),
// ensuring state mutations are visible to the Bubble Tea runtime.
type initMsg struct{}

// Options wires a Model's collaborators.
type Options struct {
	Config   *config.Config
	Index    *apps.Index
	Walker   *fswalk.Walker
	Records  map[string]usage.Record // preloaded usage snapshot
	Recorder Recorder
	Launcher launch.Launcher
}

// Model is the Bubble Tea model for the launcher TUI. All session state
// is owned here and mutated only on the update loop; background walks
// communicate exclusively through generation-tagged messages.
type Model struct {
	cfg      *config.Config
	index    *apps.Index
	walker   *fswalk.Walker
	recorder Recorder
	launcher launch.Launcher
	rank     *ranker

	input textinput.Model
	mode  Mode

	// gen is the cancellation token: it increments on every query or
	// mode change, and arriving walker messages with a different
	// generation are discarded.
	gen        uint64
	debounceID uint64
	cancelWalk context.CancelFunc
	walkCh     chan fswalk.Msg
	walking    bool

	results   []Candidate
	selection int

	// forceTerminal wraps the next launch of the selected item in a
	// terminal, independent of its stored preference. It resets when
	// the selection, query, or mode changes.
	forceTerminal bool

	// showDormant includes apps whose last launch is older than the
	// dormancy cutoff. Session-wide, toggled with Ctrl+H.
	showDormant bool

	status string
	width  int
	height int

	cancelled bool
	launched  string // display text of the launched item, set on Enter
}

// NewModel creates a launcher model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		cfg:      opts.Config,
		index:    opts.Index,
		walker:   opts.Walker,
		recorder: opts.Recorder,
		launcher: opts.Launcher,
		rank: newRanker(
			opts.Records,
			opts.Config.Ranking.LaunchWeight,
			opts.Config.Ranking.LaunchCap,
			opts.Config.Ranking.DormantDays,
		),
		input:    ti,
		mode:     ModeApps,
		walkCh:   make(chan fswalk.Msg, 16),
	}
}

// Cancelled reports whether the user quit without launching.
func (m Model) Cancelled() bool { return m.cancelled }

// Launched returns the display text of the launched item, or "".
func (m Model) Launched() string { return m.launched }

// Init implements tea.Model. The walker channel reader is armed once
// here and re-armed after every message; it persists across generations.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.waitForWalk(),
		func() tea.Msg { return initMsg{} },
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case walkMsg:
		return m.handleWalk(msg)

	case debounceMsg:
		return m.handleDebounce(msg)

	case initMsg:
		return m.refresh()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.cancelled = true
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEnter:
		return m.launchSelection()

	case tea.KeyTab:
		// Query survives the toggle; results do not.
		if m.mode == ModeApps {
			m.mode = ModeFiles
		} else {
			m.mode = ModeApps
		}
		m.results = nil
		m.selection = 0
		m.forceTerminal = false
		m.status = ""
		m.bumpGeneration()
		return m.refresh()

	case tea.KeyUp, tea.KeyCtrlP:
		if m.selection > 0 {
			m.selection--
			m.forceTerminal = false
		}
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.selection < len(m.results)-1 {
			m.selection++
			m.forceTerminal = false
		}
		return m, nil

	case tea.KeyCtrlT:
		if c, ok := m.selected(); ok && c.App != nil {
			m.forceTerminal = !m.forceTerminal
		}
		return m, nil

	case tea.KeyCtrlH:
		m.showDormant = !m.showDormant
		if m.mode == ModeApps {
			m.selection = 0
			m.forceTerminal = false
			m.searchApps()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		return m.onQueryChanged(cmd)
	}
	return m, cmd
}

// onQueryChanged reacts to an edited query: Apps mode re-searches
// synchronously, Files mode cancels the in-flight walk and schedules a
// fresh one behind a short debounce.
func (m Model) onQueryChanged(inputCmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.selection = 0
	m.forceTerminal = false
	m.status = ""
	m.bumpGeneration()

	if m.mode == ModeApps {
		m.searchApps()
		return m, inputCmd
	}

	// The debounce window is part of the search: show progress, not
	// "no matches", while the timer runs.
	m.results = nil
	m.walking = true
	return m, tea.Batch(inputCmd, m.startDebounce())
}

// refresh re-queries the backend for the current mode, immediately.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.mode == ModeApps {
		m.searchApps()
		return m, nil
	}
	m.startWalk()
	return m, nil
}

// searchApps runs the synchronous application search and re-ranks.
// Dormant apps are filtered out unless the session reveals them.
func (m *Model) searchApps() {
	scored := m.index.Search(m.input.Value())
	cands := make([]Candidate, 0, len(scored))
	for _, sa := range scored {
		c := appCandidate(sa)
		if !m.showDormant && m.rank.dormant(c.Key()) {
			continue
		}
		c.Score = m.rank.blend(c.Score, c.Key())
		cands = append(cands, c)
	}
	sortCandidates(cands)
	if len(cands) > m.cfg.Search.MaxResults {
		cands = cands[:m.cfg.Search.MaxResults]
	}
	m.results = cands
	m.clampSelection()
}

// startDebounce arms the walk debounce timer.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	interval := time.Duration(m.cfg.Search.DebounceMs) * time.Millisecond
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// handleDebounce starts the walk if the timer is still current.
func (m Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.debounceID || m.mode != ModeFiles {
		return m, nil // stale timer or mode changed since; ignore
	}
	m.startWalk()
	return m, nil
}

// startWalk cancels any in-flight walk and launches a fresh one for the
// current generation. The shared channel reader is already armed.
func (m *Model) startWalk() {
	m.cancelInflight()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelWalk = cancel
	m.walking = true
	m.results = nil
	m.walker.Walk(ctx, m.gen, m.input.Value(), m.walkCh)
}

// handleWalk merges a walker message into the result set, discarding
// messages from stale generations.
func (m Model) handleWalk(msg walkMsg) (tea.Model, tea.Cmd) {
	inner := msg.msg
	if inner.Generation() != m.gen || m.mode != ModeFiles {
		return m, m.waitForWalk()
	}

	switch v := inner.(type) {
	case fswalk.Batch:
		cands := make([]Candidate, 0, len(v.Entries))
		for _, e := range v.Entries {
			c := pathCandidate(e)
			c.Score = m.rank.blend(c.Score, c.Key())
			cands = append(cands, c)
		}
		m.results = mergeBounded(m.results, cands, m.cfg.Search.MaxResults)
		m.clampSelection()

	case fswalk.Done:
		m.walking = false
		if v.Err != nil {
			m.results = nil
			m.selection = 0
			m.status = fmt.Sprintf("cannot read %s: %v", m.walker.Root, v.Err)
		}
	}

	return m, m.waitForWalk()
}

// waitForWalk returns a command that blocks for the next walker message.
func (m Model) waitForWalk() tea.Cmd {
	ch := m.walkCh
	return func() tea.Msg { return walkMsg{msg: <-ch} }
}

// bumpGeneration invalidates all in-flight background work.
func (m *Model) bumpGeneration() {
	m.gen++
	m.cancelInflight()
}

// cancelInflight cancels the active walk context, if any.
func (m *Model) cancelInflight() {
	if m.cancelWalk != nil {
		m.cancelWalk()
		m.cancelWalk = nil
	}
	m.walking = false
}

// selected returns the currently selected candidate.
func (m Model) selected() (Candidate, bool) {
	if m.selection < 0 || m.selection >= len(m.results) {
		return Candidate{}, false
	}
	return m.results[m.selection], true
}

// clampSelection keeps the selection index within bounds.
func (m *Model) clampSelection() {
	if len(m.results) == 0 {
		m.selection = 0
		return
	}
	if m.selection >= len(m.results) {
		m.selection = len(m.results) - 1
	}
	if m.selection < 0 {
		m.selection = 0
	}
}

// launchSelection resolves the final launch mode, invokes the launch
// collaborator, records the launch, and ends the session. Launch and
// persistence failures keep the session interactive or degrade to an
// unremembered launch; they never crash the loop.
func (m Model) launchSelection() (tea.Model, tea.Cmd) {
	c, ok := m.selected()
	if !ok {
		return m, nil
	}

	ctx := context.Background()

	if c.App != nil {
		mode := m.resolveMode(c)
		if err := m.launcher.LaunchApp(*c.App, mode); err != nil {
			m.status = fmt.Sprintf("launch failed: %v", err)
			return m, nil
		}
		m.recordLaunch(ctx, c.Key(), mode)
	} else {
		if err := m.launcher.OpenFile(c.Path.Path); err != nil {
			m.status = fmt.Sprintf("open failed: %v", err)
			return m, nil
		}
		m.recordLaunch(ctx, c.Key(), usage.ModeDirect)
	}

	m.launched = c.Display
	m.cancelInflight()
	return m, tea.Quit
}

// resolveMode picks the launch mode for an app candidate: the transient
// Ctrl+T override wins, then the stored preference, then the manifest's
// terminal flag.
func (m Model) resolveMode(c Candidate) usage.Mode {
	if m.forceTerminal {
		return usage.ModeTerminal
	}
	if rec, ok := m.rank.record(c.Key()); ok && rec.LastLaunchMode.Valid() {
		return rec.LastLaunchMode
	}
	if c.App.Terminal {
		return usage.ModeTerminal
	}
	return usage.ModeDirect
}

// recordLaunch persists the launch. A write failure means this launch
// isn't remembered; it is logged and otherwise ignored.
func (m *Model) recordLaunch(ctx context.Context, key string, mode usage.Mode) {
	if err := m.recorder.RecordLaunch(ctx, key, mode); err != nil {
		log.Printf("usage record for %s failed: %v", key, err)
		return
	}
	rec, _ := m.rank.record(key)
	rec.Key = key
	rec.LaunchCount++
	rec.LastLaunchMode = mode
	m.rank.update(rec)
}
