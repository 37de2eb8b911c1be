package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/catalog"
	"github.com/mmcdole/archivist/internal/domain"
	"github.com/mmcdole/archivist/internal/tui/components"
	"github.com/mmcdole/archivist/internal/tui/styles"
	"github.com/mmcdole/archivist/internal/view"
)

// Model is the main application model
type Model struct {
	Catalog *catalog.Service
	Keys    KeyMap

	// Components
	Table     components.DocumentTable
	SortModal components.SortModal
	Filter    textinput.Model
	Spinner   spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Filtering   bool
	ShowHelp    bool
	Loading     bool // follows the shared busy counter
	Progress    domain.FetchProgress
	StatusMsg   string
	StatusIsErr bool

	ctx        context.Context
	busyCh     chan bool
	viewCh     chan view.Result[domain.Document]
	progressCh chan domain.FetchProgress
	progress   *ProgressObserver
	unsubs     []func()
}

// NewModel creates the application model and subscribes it to the busy
// counter and the catalog's view. ctx bounds every refresh the model starts.
func NewModel(ctx context.Context, svc *catalog.Service, counter *busy.Counter) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.SetValue(svc.Filter())

	sp := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: styles.SpinnerFrames, FPS: 100 * time.Millisecond}),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	m := Model{
		Catalog:    svc,
		Keys:       DefaultKeyMap(),
		Table:      components.NewDocumentTable(),
		SortModal:  components.NewSortModal(),
		Filter:     ti,
		Spinner:    sp,
		ctx:        ctx,
		busyCh:     make(chan bool, 1),
		viewCh:     make(chan view.Result[domain.Document], 1),
		progressCh: make(chan domain.FetchProgress, 1),
	}
	m.progress = NewProgressObserver(m.progressCh)

	visible, unsubBusy := counter.Subscribe(busy.NewChannelObserver(m.busyCh))
	current, unsubView := svc.Source().Subscribe(NewViewObserver(m.viewCh))
	m.unsubs = []func(){unsubBusy, unsubView}

	m.Loading = visible
	m.Table.SetQuery(svc.Filter())
	m.Table.SetResult(current)
	return m
}

// Close detaches the model from the counter and the view
func (m Model) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		RefreshCmd(m.ctx, m.Catalog, m.progress),
		WaitForBusyCmd(m.busyCh),
		WaitForViewCmd(m.viewCh),
		WaitForProgressCmd(m.progressCh),
	}
	if m.Loading {
		cmds = append(cmds, m.Spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Filter.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case BusyMsg:
		m.Loading = msg.Visible
		if msg.Visible {
			m.Progress = domain.FetchProgress{}
			return m, tea.Batch(WaitForBusyCmd(m.busyCh), m.Spinner.Tick)
		}
		return m, WaitForBusyCmd(m.busyCh)

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil // stop animating until the next busy edge
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ViewMsg:
		m.Table.SetResult(msg.Result)
		return m, WaitForViewCmd(m.viewCh)

	case ProgressMsg:
		m.Progress = msg.Progress
		return m, WaitForProgressCmd(m.progressCh)

	case RefreshedMsg:
		return m.setStatus(fmt.Sprintf("Loaded %d documents", msg.Count), false)

	case ErrMsg:
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	d := 3 * time.Second
	if isErr {
		d = 5 * time.Second
	}
	return m, ClearStatusCmd(d)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.SortModal.IsVisible() {
		_, sel := m.SortModal.HandleKey(msg.String())
		if sel != nil {
			m.Catalog.SetSort(*sel)
			m.syncView()
		}
		return m, nil
	}

	if m.Filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = true
	case key.Matches(msg, m.Keys.Up):
		m.Table.MoveUp()
	case key.Matches(msg, m.Keys.Down):
		m.Table.MoveDown()
	case key.Matches(msg, m.Keys.NextPage):
		m.Catalog.Source().NextPage()
		m.Table.ResetCursor()
		m.syncView()
	case key.Matches(msg, m.Keys.PrevPage):
		m.Catalog.Source().PrevPage()
		m.Table.ResetCursor()
		m.syncView()
	case key.Matches(msg, m.Keys.Filter):
		m.Filtering = true
		return m, m.Filter.Focus()
	case key.Matches(msg, m.Keys.Sort):
		m.SortModal.Show(catalog.SortOptions(), m.Catalog.Sort())
	case key.Matches(msg, m.Keys.Refresh):
		if m.Loading {
			return m.setStatus("Refresh already running", false)
		}
		return m, RefreshCmd(m.ctx, m.Catalog, m.progress)
	case key.Matches(msg, m.Keys.Escape):
		if m.Catalog.Filter() != "" {
			m.Filter.SetValue("")
			m.applyFilter()
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Escape):
		m.Filtering = false
		m.Filter.Blur()
		m.Filter.SetValue("")
		m.applyFilter()
		return m, nil
	case key.Matches(msg, m.Keys.Enter):
		m.Filtering = false
		m.Filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.Filter, cmd = m.Filter.Update(msg)
	if m.Filter.Value() != m.Catalog.Filter() {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter pushes the filter input to the catalog and jumps to the
// first page of the matches
func (m *Model) applyFilter() {
	query := m.Filter.Value()
	m.Catalog.SetFilter(query)
	src := m.Catalog.Source()
	_ = src.SetPage(0, src.View().PageSize) // page size of a live view is always valid
	m.Table.SetQuery(query)
	m.Table.ResetCursor()
	m.syncView()
}

// syncView reads the current page after a synchronous change, ahead of the
// matching ViewMsg
func (m *Model) syncView() {
	m.Table.SetResult(m.Catalog.Source().View())
}
