package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/playback"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/shared"
	"github.com/desertthunder/karaoke/internal/tasks"
)

// minAutoplayDelay bounds how early a short track can be cut off.
const minAutoplayDelay = 500 * time.Millisecond

// Options configures the TUI.
type Options struct {
	Autoplay        bool
	Lead            time.Duration // Spotify items advance this much before they end
	RefreshInterval time.Duration // zero disables periodic catalog refresh
	ShowAdder       bool
	Header          string // pre-rendered block shown above the queue, e.g. [RenderQR]
	Logger          *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *playback.Session
	loader  *tasks.CatalogLoader
	opts    Options
	logger  *log.Logger

	list      list.Model
	help      help.Model
	keys      keyMap
	width     int
	height    int
	status    string
	err       error
	busy      bool
	loading   bool
	showAdder bool

	autoplaySeq int
}

// NewModel creates a new TUI model. loader may be nil, which disables refresh.
func NewModel(ctx context.Context, session *playback.Session, loader *tasks.CatalogLoader, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Next Up"
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	m := &Model{
		ctx:       ctx,
		session:   session,
		loader:    loader,
		opts:      opts,
		logger:    opts.Logger,
		list:      l,
		help:      help.New(),
		keys:      newKeyMap(),
		showAdder: opts.ShowAdder,
	}
	m.syncList()
	return m
}

// Init schedules the first catalog refresh.
func (m *Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-m.chromeHeight(), 5))
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the header, the status line and the queue.
func (m *Model) View() string {
	var b strings.Builder

	if m.opts.Header != "" {
		b.WriteString(m.opts.Header)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.play):
		return m, m.playAt(m.selectedIndex())
	case key.Matches(msg, m.keys.next):
		return m, m.playNext(nil)
	case key.Matches(msg, m.keys.youtube):
		p := models.YouTube
		return m, m.playNext(&p)
	case key.Matches(msg, m.keys.spotify):
		p := models.Spotify
		return m, m.playNext(&p)
	case key.Matches(msg, m.keys.retry):
		return m, m.retry()
	case key.Matches(msg, m.keys.shuffle):
		m.session.Shuffle()
		m.status = "Queue shuffled"
		m.list.Select(0)
		return m, m.syncList()
	case key.Matches(msg, m.keys.moveUp):
		i := m.selectedIndex()
		return m, m.move(i, i-1)
	case key.Matches(msg, m.keys.moveDown):
		i := m.selectedIndex()
		return m, m.move(i, i+1)
	case key.Matches(msg, m.keys.front):
		if err := m.session.MoveToFront(m.selectedIndex()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		if m.list.FilterState() == list.Unfiltered {
			m.list.Select(0)
		}
		return m, m.syncList()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.adder):
		m.showAdder = !m.showAdder
		return m, m.syncList()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlayed:
		data := msg.data.(playedData)
		m.busy = false
		cmd := m.syncList()
		if data.err != nil {
			m.err = data.err
			if m.session.Pending() != nil {
				m.status = "Press R to retry"
			}
			return m, cmd
		}
		m.err = nil
		m.status = fmt.Sprintf("Now playing: %s (%d plays)", data.entry.Item.DisplayName(), data.entry.Count)
		return m, tea.Batch(cmd, m.scheduleAutoplay(data.entry))

	case MsgAutoplay:
		if msg.data.(int) != m.autoplaySeq || m.busy {
			return m, nil
		}
		m.logger.Debug("autoplay advancing")
		return m, m.playNext(nil)

	case MsgRefreshTick:
		return m, tea.Batch(m.refresh(), m.scheduleRefresh())

	case MsgCatalogLoaded:
		data := msg.data.(catalogData)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.logger.Warn("catalog refresh failed, keeping current catalog", "error", data.err)
			return m, nil
		}
		added, removed := m.session.SetCatalog(data.result.Catalog)
		m.status = fmt.Sprintf("Catalog refreshed: %d tracks (+%d/-%d)", len(data.result.Catalog), added, removed)
		if failed := data.result.Failed(); len(failed) > 0 {
			m.status += fmt.Sprintf(", %d source(s) failed", len(failed))
		}
		return m, m.syncList()
	}
	return m, nil
}

func (m *Model) playNext(platform *models.Platform) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	m.status = "Starting playback..."
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		entry, err := session.PlayNext(ctx, platform)
		return playedMsg(entry, err)
	}
}

func (m *Model) playAt(i int) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		entry, err := session.PlayAt(ctx, i)
		return playedMsg(entry, err)
	}
}

func (m *Model) retry() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		entry, err := session.Retry(ctx)
		return playedMsg(entry, err)
	}
}

func (m *Model) move(from, to int) tea.Cmd {
	if err := m.session.Move(from, to); err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	if m.list.FilterState() == list.Unfiltered {
		m.list.Select(to)
	}
	return m.syncList()
}

// selectedIndex maps the highlighted row to its position in the full queue.
// Rows are counted in the filtered view, the session counts the whole queue.
func (m *Model) selectedIndex() int {
	selected, ok := m.list.SelectedItem().(queueItem)
	if !ok {
		return -1
	}
	for i, e := range m.session.Upcoming(-1) {
		if e.Item.ID == selected.entry.Item.ID {
			return i
		}
	}
	return -1
}

func (m *Model) refresh() tea.Cmd {
	if m.loader == nil || m.loading {
		return nil
	}
	m.loading = true
	m.status = "Refreshing catalog..."
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		result, err := loader.Load(ctx, nil)
		return catalogLoadedMsg(result, err)
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.loader == nil || m.opts.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg()
	})
}

func (m *Model) scheduleAutoplay(entry *queue.Entry) tea.Cmd {
	m.autoplaySeq++
	if !m.opts.Autoplay {
		return nil
	}

	delay := AutoplayDelay(entry.Item, m.opts.Lead)
	if delay <= 0 {
		return nil
	}

	seq := m.autoplaySeq
	m.logger.Debug("autoplay scheduled", "item", entry.Item.ID, "after", delay)
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoplayMsg(seq)
	})
}

// AutoplayDelay returns how long to wait before advancing past item, or zero
// when its duration is unknown. Spotify items advance lead early; if that
// leaves less than a second the delay becomes 90% of the duration instead.
func AutoplayDelay(item models.Item, lead time.Duration) time.Duration {
	if item.Duration <= 0 {
		return 0
	}
	if item.Platform != models.Spotify || lead <= 0 {
		return item.Duration
	}

	delay := item.Duration
	if delay > lead {
		delay -= lead
	}
	if delay < time.Second {
		delay = max(minAutoplayDelay, item.Duration*9/10)
	}
	return delay
}

func (m *Model) syncList() tea.Cmd {
	entries := m.session.Upcoming(-1)
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = queueItem{entry: e, count: m.session.Count(e.Item.ID), showAdder: m.showAdder}
	}
	return m.list.SetItems(items)
}

func (m *Model) renderStatus() string {
	var lines []string

	if current := m.session.Current(); current != nil {
		lines = append(lines, styles.ok.Render("♪ "+current.Item.DisplayName()))
	} else {
		lines = append(lines, styles.help.Render("Nothing playing"))
	}
	if m.status != "" {
		lines = append(lines, m.status)
	}
	if m.err != nil {
		lines = append(lines, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) chromeHeight() int {
	h := 8
	if m.opts.Header != "" {
		h += lipgloss.Height(m.opts.Header) + 2
	}
	return h
}

func joinHorizontal(blocks []string) string {
	switch len(blocks) {
	case 0:
		return ""
	case 1:
		return blocks[0]
	}

	spaced := make([]string, 0, len(blocks)*2-1)
	for i, b := range blocks {
		if i > 0 {
			spaced = append(spaced, "   ")
		}
		spaced = append(spaced, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}
