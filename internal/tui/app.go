package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/opener"
	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/session"
)

type linkOpener interface {
	Open(link string) error
}

// App is the interactive front end. It is the presenter.View of its own
// session; every View call happens on the bubbletea update loop.
type App struct {
	config     *config.Config
	session    *session.Session
	opener     linkOpener
	keyHandler *KeyHandler
	keys       keyMap

	ctx    context.Context
	cancel context.CancelFunc

	searchInput textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model
	detail      viewport.Model
	help        help.Model
	view        View
	width       int
	height      int

	cards       []presenter.Card
	noResults   bool
	loading     bool
	errVisible  bool
	errMessage  string
	count       int
	lastUpdated time.Time

	selected      int
	detailID      int
	revealed      int
	revealSeq     int
	revealPending bool
	cardOffsets   []int

	status     string
	statusKind StatusKind
	statusSeq  int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, fetcher session.Fetcher) *App {
	ApplyColors(cfg.UI.Colors)

	si := textinput.New()
	si.Prompt = "⌕ "
	si.Placeholder = "Search by name, email, username or company…"
	si.CharLimit = 100

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(AccentColor)),
	)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		opener:      opener.New(cfg),
		keys:        newKeyMap(cfg),
		ctx:         ctx,
		cancel:      cancel,
		searchInput: si,
		spinner:     sp,
		viewport:    viewport.New(80, 16),
		detail:      viewport.New(80, 16),
		help:        help.New(),
		view:        ViewCards,
		width:       80,
		height:      24,
		cards:       []presenter.Card{},
	}
	app.session = session.New(fetcher, presenter.New(app, cfg.UI.RevealStagger))
	app.keyHandler = NewKeyHandler(app)
	app.layout()

	return app
}

func (a *App) Session() *session.Session { return a.session }

// Shutdown cancels any fetch still in flight.
func (a *App) Shutdown() { a.cancel() }

func (a *App) SetLoading(active bool) {
	a.loading = active
	a.keys.Refresh.SetEnabled(!active)
	a.keys.Shortcut.SetEnabled(!active)
}

func (a *App) RenderCards(cards []presenter.Card) {
	a.cards = cards
	a.revealSeq++
	a.revealed = 0
	a.revealPending = len(cards) > 0
	a.selected = clamp(a.selected, 0, len(cards)-1)
	if a.view == ViewDetail {
		if _, ok := a.cardByID(a.detailID); !ok {
			a.view = ViewCards
		}
	}
}

func (a *App) ShowNoResults(visible bool) { a.noResults = visible }

func (a *App) ShowError(message string) {
	a.errVisible = true
	a.errMessage = message
}

func (a *App) HideError() {
	a.errVisible = false
	a.errMessage = ""
}

func (a *App) SetCount(n int)             { a.count = n }
func (a *App) SetLastUpdated(t time.Time) { a.lastUpdated = t }

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.startRefresh(session.TriggerInitial),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width

	case tea.KeyMsg:
		_, cmd := a.keyHandler.HandleKey(msg)
		cmds = append(cmds, cmd)

	case fetchDoneMsg:
		a.session.Complete(msg.outcome)
		if term := a.session.SearchTerm(); a.searchInput.Value() != term {
			a.searchInput.SetValue(term)
		}

	case cardRevealMsg:
		cmds = append(cmds, a.reveal(msg))

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}

	case linkOpenedMsg:
		cmds = append(cmds, a.setStatus(MsgOpened(msg.link), StatusSuccess))

	case detailRenderedMsg:
		if a.view == ViewDetail && msg.id == a.detailID {
			a.detail.SetContent(msg.content)
			a.detail.GotoTop()
		}

	case errorMsg:
		cmds = append(cmds, a.setStatus("✗ "+msg.Error(), StatusError))

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if a.revealPending {
		a.revealPending = false
		cmds = append(cmds, a.revealNext(a.revealSeq, 0))
	}
	a.layout()

	return a, tea.Batch(cmds...)
}

func (a *App) clear() tea.Cmd {
	a.session.Clear()
	a.searchInput.Reset()
	a.selected = 0
	a.view = ViewCards
	a.viewport.GotoTop()
	return a.setStatus(MsgCleared, StatusInfo)
}

func (a *App) moveSelection(delta int) {
	a.selected = clamp(a.selected+delta, 0, len(a.cards)-1)
}

func (a *App) selectedCard() (presenter.Card, bool) {
	if a.view == ViewDetail {
		return a.cardByID(a.detailID)
	}
	if a.selected < 0 || a.selected >= len(a.cards) {
		return presenter.Card{}, false
	}
	return a.cards[a.selected], true
}

func (a *App) cardByID(id int) (presenter.Card, bool) {
	for _, c := range a.cards {
		if c.ID == id {
			return c, true
		}
	}
	return presenter.Card{}, false
}

func (a *App) openDetail() tea.Cmd {
	c, ok := a.selectedCard()
	if !ok {
		return a.setStatus(MsgNoSelection, StatusWarn)
	}
	a.view = ViewDetail
	a.detailID = c.ID
	a.detail.SetContent(renderMuted("Loading " + c.Name + "…"))
	return a.renderDetail(c)
}

func (a *App) cardWidth() int {
	w := a.config.UI.CardWidth
	if w <= 0 || w > a.width-2 {
		w = a.width - 2
	}
	return w
}

// layout sizes the widgets for the current window and refreshes the card
// list content so the selected card stays in view.
func (a *App) layout() {
	inputWidth := a.width - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	a.searchInput.Width = inputWidth - lipgloss.Width(a.searchInput.Prompt) - 1

	bodyHeight := a.height - lipgloss.Height(a.headerView()) - lipgloss.Height(a.footerView())
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	a.viewport.Width = a.width
	a.viewport.Height = bodyHeight
	a.detail.Width = a.width
	a.detail.Height = bodyHeight

	a.viewport.SetContent(a.cardsContent())
	a.ensureSelectedVisible()
}

func (a *App) cardsContent() string {
	width := a.cardWidth()
	a.cardOffsets = a.cardOffsets[:0]

	var blocks []string
	line := 0
	for i := 0; i < a.revealed && i < len(a.cards); i++ {
		block := renderCard(a.cards[i], i == a.selected, width)
		a.cardOffsets = append(a.cardOffsets, line)
		line += lipgloss.Height(block)
		blocks = append(blocks, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (a *App) ensureSelectedVisible() {
	if a.selected >= len(a.cardOffsets) {
		return
	}
	top := a.cardOffsets[a.selected]
	bottom := a.viewport.TotalLineCount()
	if a.selected+1 < len(a.cardOffsets) {
		bottom = a.cardOffsets[a.selected+1]
	}

	switch {
	case top < a.viewport.YOffset:
		a.viewport.SetYOffset(top)
	case bottom > a.viewport.YOffset+a.viewport.Height:
		a.viewport.SetYOffset(bottom - a.viewport.Height)
	}
}

func (a *App) statsLine() string {
	if a.loading {
		return a.spinner.View() + " " + renderMuted(MsgLoading)
	}

	count := MsgUserCount(a.count)
	if term := a.session.SearchTerm(); term != "" {
		count = fmt.Sprintf("%d of %s matching %q", a.count, MsgUserCount(a.session.Total()), term)
	}
	return renderMuted(count + " • " + MsgLastUpdated(a.lastUpdated))
}

func (a *App) headerView() string {
	rows := []string{renderHeader(CompactLogo+" users", a.config.Endpoint.URL, a.width)}

	if a.view == ViewCards {
		inputWidth := a.width - 4
		if inputWidth < 10 {
			inputWidth = 10
		}
		rows = append(rows, renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), inputWidth))
	}

	rows = append(rows, a.statsLine())
	if a.errVisible {
		banner := ErrorMessageStyle.Render("✗ " + a.errMessage)
		rows = append(rows, banner+"  "+renderHelp("press "+a.config.Keys.Bindings.Refresh+" to retry"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) footerView() string {
	var line string
	if a.status != "" {
		line = a.statusKind.style().Render(a.status)
	} else {
		line = a.help.View(a.keyHandler.HelpBindings())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderSeparator(a.width),
		lipgloss.NewStyle().Padding(0, 1).Render(line),
	)
}

func (a *App) bodyView() string {
	if a.view == ViewDetail {
		return a.detail.View()
	}

	switch {
	case a.noResults:
		return renderCentered(a.width, a.viewport.Height, renderMuted(MsgNoResults))
	case len(a.cards) == 0 && a.loading:
		return renderCentered(a.width, a.viewport.Height, a.spinner.View()+" "+renderMuted(MsgLoading))
	case len(a.cards) == 0:
		return renderCentered(a.width, a.viewport.Height, GetWelcomeMessage())
	default:
		return a.viewport.View()
	}
}

func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.headerView(),
		a.bodyView(),
		a.footerView(),
	)
}
