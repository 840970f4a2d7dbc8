package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treekit/pkg/loader"
	"github.com/vanderheijden86/treekit/pkg/logging"
	"github.com/vanderheijden86/treekit/pkg/stats"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

// SplitViewThreshold is the terminal width above which details sit beside the tree.
const SplitViewThreshold = 100

// ReloadMsg carries a re-parsed forest from a file watcher.
type ReloadMsg struct {
	Doc *loader.Document
	Err error
}

// listenForReloads waits for the next reload on ch.
func listenForReloads(ch <-chan ReloadMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Model is the top-level bubbletea model of the viewer.
type Model struct {
	tree     TreeModel
	detail   viewport.Model
	markdown *MarkdownRenderer
	help     help.Model
	keys     KeyMap
	search   textinput.Model
	theme    Theme

	title   string
	reloads <-chan ReloadMsg
	copy    func(string) error
	log     *logging.Logger

	searching  bool
	showDetail bool
	splitView  bool
	status     string
	ready      bool
	width      int
	height     int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithTitle sets the header title.
func WithTitle(title string) ModelOption {
	return func(m *Model) { m.title = title }
}

// WithReloads makes the model apply forests received on ch.
func WithReloads(ch <-chan ReloadMsg) ModelOption {
	return func(m *Model) { m.reloads = ch }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) ModelOption {
	return func(m *Model) { m.copy = fn }
}

// WithModelLogger sets the logger.
func WithModelLogger(log *logging.Logger) ModelOption {
	return func(m *Model) { m.log = log }
}

// WithTheme overrides DefaultTheme.
func WithTheme(theme Theme) ModelOption {
	return func(m *Model) { m.theme = theme }
}

// NewModel builds the viewer over ctrl.
func NewModel(ctrl *tree.Controller, opts ...ModelOption) Model {
	m := Model{
		keys:  DefaultKeyMap(),
		help:  help.New(),
		title: "treekit",
		copy:  clipboard.WriteAll,
		theme: DefaultTheme(lipgloss.DefaultRenderer()),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.log == nil {
		m.log = logging.Nop()
	}
	m.log = m.log.With("ui")

	m.tree = NewTreeModel(ctrl, m.theme)
	m.markdown = NewMarkdownRenderer(60, m.theme)
	m.detail = viewport.New(60, 20)

	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "label, or =expression"
	m.search.CharLimit = 256
	return m
}

// Status returns the last status-bar message.
func (m Model) Status() string {
	return m.status
}

func (m Model) Init() tea.Cmd {
	return listenForReloads(m.reloads)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case ReloadMsg:
		if msg.Err != nil {
			m.status = "reload failed: " + msg.Err.Error()
		} else if msg.Doc != nil {
			m.tree.Controller().SetNodes(msg.Doc.Nodes)
			m.tree.Refresh()
			m.status = fmt.Sprintf("reloaded %d roots", len(msg.Doc.Nodes))
		}
		m.updateDetail()
		cmds = append(cmds, listenForReloads(m.reloads))

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
		m.updateDetail()

		if m.showDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey applies a navigation or state key. A non-nil command ends the update.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	t := &m.tree
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		t.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		t.PageDown()
	case key.Matches(msg, m.keys.Top):
		t.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, m.keys.Expand):
		t.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.Collapse):
		t.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.Parent):
		t.JumpToParent()
	case key.Matches(msg, m.keys.Toggle):
		t.ToggleExpand()
	case key.Matches(msg, m.keys.Select):
		t.ToggleSelect()
	case key.Matches(msg, m.keys.ClearSelection):
		t.ClearSelection()
	case key.Matches(msg, m.keys.ExpandAll):
		t.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		t.CollapseAll()
	case key.Matches(msg, m.keys.ToggleAll):
		t.ToggleExpandCollapseAll()
	case key.Matches(msg, m.keys.Level):
		if level, err := strconv.Atoi(msg.String()); err == nil {
			t.ExpandToLevel(level)
			m.status = fmt.Sprintf("expanded to level %d", level)
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(t.SearchQuery())
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		if t.SearchQuery() != "" {
			t.ClearSearch()
		}
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.layout()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		if err := m.tree.Search(m.search.Value()); err != nil {
			m.status = "invalid filter: " + err.Error()
		} else if q := m.tree.SearchQuery(); q != "" {
			m.status = fmt.Sprintf("%d matches for %s", m.tree.MatchCount(), q)
		}
		m.updateDetail()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) copySelection() {
	ids := m.tree.Controller().SelectedIDs()
	if len(ids) == 0 {
		if id := m.tree.CursorID(); id != "" {
			ids = []string{id}
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := m.copy(strings.Join(ids, "\n")); err != nil {
		m.log.Warn("clipboard write failed", "error", err.Error())
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied %d id(s)", len(ids))
}

// layout distributes the terminal between tree, detail and footer.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	footer := 1
	if m.help.ShowAll {
		footer = 1 + len(m.keys.FullHelp()[0])
	}
	body := max(m.height-1-footer, 1) // header + footer

	m.splitView = m.showDetail && m.width > SplitViewThreshold
	m.help.Width = m.width

	switch {
	case m.splitView:
		treeWidth := m.width * 4 / 10
		detailWidth := m.width - treeWidth - 3
		m.tree.SetSize(treeWidth, body)
		m.detail.Width = detailWidth
		m.detail.Height = body
		m.markdown.SetWidth(detailWidth)
	case m.showDetail:
		m.detail.Width = m.width
		m.detail.Height = body
		m.markdown.SetWidth(m.width)
		m.tree.SetSize(m.width, body)
	default:
		m.tree.SetSize(m.width, body)
	}
	m.updateDetail()
}

func (m *Model) updateDetail() {
	if !m.showDetail {
		return
	}
	md := DetailMarkdown(m.tree.Controller(), m.tree.CursorID())
	rendered, err := m.markdown.Render(md)
	if err != nil {
		m.log.Debug("markdown render failed", "error", err.Error())
	}
	m.detail.SetContent(rendered)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()

	var body string
	switch {
	case m.splitView:
		sep := m.theme.Renderer.NewStyle().
			Foreground(m.theme.Muted).
			Render(strings.TrimRight(strings.Repeat("│\n", m.detail.Height), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.tree.width).Render(m.tree.View()),
			" "+sep+" ",
			m.detail.View())
	case m.showDetail:
		body = m.detail.View()
	default:
		body = m.tree.View()
	}

	var footer string
	if m.searching {
		footer = m.search.View()
	} else {
		footer = m.renderFooter()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	ctrl := m.tree.Controller()
	view := stats.ForController(ctrl)
	title := m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Bold(true).Render(m.title)
	// search results replace the projection, so shown comes from the pane
	counts := fmt.Sprintf(" %d shown · %d hidden · %d expanded · %d selected · %s",
		m.tree.NodeCount(), view.Hidden, view.Expanded, view.Selected, ctrl.Mode())
	if q := m.tree.SearchQuery(); q != "" {
		counts += " · search " + quote(q)
	}
	return title + m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Render(counts)
}

func (m Model) renderFooter() string {
	helpView := m.help.View(m.keys)
	if m.status == "" {
		return helpView
	}
	return m.theme.Status.Render(m.status) + " " + helpView
}
