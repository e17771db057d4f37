package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/session"
	"github.com/pders01/roster/internal/users"
)

type scriptedFetcher struct {
	mu       sync.Mutex
	outcomes []users.Outcome
	calls    int
}

func (f *scriptedFetcher) FetchUsers(context.Context) users.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	return f.outcomes[i]
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(link string) error {
	o.opened = append(o.opened, link)
	return o.err
}

func directory() []users.Record {
	return []users.Record{
		{
			ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz",
			Address: users.Address{Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874"},
			Phone:   "1-770-736-8031 x56442", Website: "hildegard.org",
			Company: users.Company{Name: "Romaguera-Crona"},
		},
		{
			ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv",
			Address: users.Address{Street: "Victor Plains", Suite: "Suite 879", City: "Wisokyburgh", Zipcode: "90566-7771"},
			Phone:   "010-692-6593 x09125", Website: "anastasia.net",
			Company: users.Company{Name: "Deckow-Crist"},
		},
		{
			ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net",
			Address: users.Address{Street: "Douglas Extension", Suite: "Suite 847", City: "McKenziehaven", Zipcode: "59590-4157"},
			Phone:   "1-463-123-4447", Website: "ramiro.info",
			Company: users.Company{Name: "Romaguera-Jacobson"},
		},
	}
}

func newTestApp(t *testing.T, outcomes ...users.Outcome) (*App, *fakeOpener) {
	t.Helper()
	app := NewApp(config.TestConfig(), &scriptedFetcher{outcomes: outcomes})
	op := &fakeOpener{}
	app.opener = op
	t.Cleanup(app.Shutdown)
	return app, op
}

func press(a *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(a *App, s string) {
	for _, r := range s {
		press(a, runes(string(r)))
	}
}

// finishFetch delivers the outcome of the outstanding fetch the way the
// bubbletea runtime would.
func finishFetch(t *testing.T, a *App) {
	t.Helper()
	require.Equal(t, session.StateLoading, a.session.State())
	a.Update(fetchDoneMsg{outcome: a.session.Fetch(context.Background())})
}

func revealAll(a *App) {
	for i := range a.cards {
		a.Update(cardRevealMsg{seq: a.revealSeq, index: i})
	}
}

func loadedApp(t *testing.T, outcomes ...users.Outcome) (*App, *fakeOpener) {
	t.Helper()
	app, op := newTestApp(t, outcomes...)
	require.NotNil(t, app.startRefresh(session.TriggerInitial))
	finishFetch(t, app)
	revealAll(app)
	return app, op
}

func TestApp_InitStartsInitialLoad(t *testing.T) {
	app, _ := newTestApp(t, users.Success(directory()))

	cmd := app.Init()
	require.NotNil(t, cmd)
	assert.True(t, app.loading)
	assert.Equal(t, session.StateLoading, app.session.State())
	assert.Equal(t, 1, app.session.FetchesIssued())
	assert.Contains(t, app.View(), MsgLoading)
}

func TestApp_SuccessRendersCards(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	assert.False(t, app.loading)
	assert.False(t, app.errVisible)
	assert.False(t, app.noResults)
	require.Len(t, app.cards, 3)
	assert.Equal(t, 3, app.count)
	assert.Equal(t, 3, app.revealed)
	assert.False(t, app.lastUpdated.IsZero())

	view := app.View()
	assert.Contains(t, view, "Leanne Graham")
	assert.Contains(t, view, "@Bret")
	assert.Contains(t, view, "3 users")
}

func TestApp_EmptySuccessShowsNoResults(t *testing.T) {
	app, _ := loadedApp(t, users.Success(nil))

	assert.True(t, app.noResults)
	assert.Empty(t, app.cards)
	assert.Contains(t, app.View(), MsgNoResults)
}

func TestApp_FailureShowsBannerAndKeepsCards(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()), users.HTTPFailure(404))

	require.NotNil(t, press(app, runes("r")))
	finishFetch(t, app)

	assert.True(t, app.errVisible)
	assert.Equal(t, users.MsgNotFound, app.errMessage)
	assert.Len(t, app.cards, 3)
	assert.Equal(t, session.StateRenderedError, app.session.State())
	assert.Contains(t, app.View(), users.MsgNotFound)
}

func TestApp_SuccessAfterFailureHidesBanner(t *testing.T) {
	app, _ := loadedApp(t, users.NetworkFailure(errors.New("dial tcp: refused")), users.Success(nil))
	require.True(t, app.errVisible)
	assert.Equal(t, users.MsgNetworkError, app.errMessage)

	require.NotNil(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlR}))
	assert.False(t, app.errVisible, "a new refresh hides the banner")
	finishFetch(t, app)

	assert.False(t, app.errVisible)
	assert.True(t, app.noResults)
}

func TestApp_RefreshWhileLoadingIsDropped(t *testing.T) {
	app, _ := newTestApp(t, users.Success(directory()))

	require.NotNil(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlR}))
	press(app, tea.KeyMsg{Type: tea.KeyCtrlR})
	press(app, runes("r"))

	assert.Equal(t, 1, app.session.FetchesIssued())
	assert.False(t, app.keys.Shortcut.Enabled(), "refresh is disabled while loading")

	finishFetch(t, app)
	assert.True(t, app.keys.Shortcut.Enabled())
	assert.True(t, app.keys.Refresh.Enabled())
}

func TestApp_StartRefreshWhileLoadingSetsStatus(t *testing.T) {
	app, _ := newTestApp(t, users.Success(directory()))

	require.NotNil(t, app.startRefresh(session.TriggerInitial))
	require.NotNil(t, app.startRefresh(session.TriggerShortcut))

	assert.Equal(t, MsgAlreadyLoading, app.status)
	assert.Equal(t, 1, app.session.FetchesIssued())
}

func TestApp_TypingFiltersCards(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	press(app, runes("/"))
	require.True(t, app.searchInput.Focused())

	typeText(app, "how")
	assert.Equal(t, "how", app.searchInput.Value())
	assert.Equal(t, "how", app.session.SearchTerm())
	require.Len(t, app.cards, 1)
	assert.Equal(t, "Ervin Howell", app.cards[0].Name)
	assert.Equal(t, 1, app.count)
	assert.Equal(t, 1, app.session.FetchesIssued(), "search never fetches")

	press(app, tea.KeyMsg{Type: tea.KeyBackspace})
	press(app, tea.KeyMsg{Type: tea.KeyBackspace})
	press(app, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Len(t, app.cards, 3)
}

func TestApp_TypingRIntoSearchDoesNotRefresh(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	press(app, runes("/"))
	typeText(app, "r")

	assert.Equal(t, 1, app.session.FetchesIssued())
	assert.Equal(t, "r", app.session.SearchTerm())
}

func TestApp_NoMatchesShowsNoResults(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	press(app, runes("/"))
	typeText(app, "zzz")

	assert.True(t, app.noResults)
	assert.Equal(t, 0, app.count)
	assert.Contains(t, app.View(), MsgNoResults)
}

func TestApp_ManualRefreshResetsSearchInput(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()), users.Success(directory()))

	press(app, runes("/"))
	typeText(app, "how")
	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, app.searchInput.Focused())

	require.NotNil(t, press(app, runes("r")))
	finishFetch(t, app)

	assert.Empty(t, app.searchInput.Value())
	assert.Empty(t, app.session.SearchTerm())
	assert.Len(t, app.cards, 3)
}

func TestApp_ClearKey(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))
	press(app, runes("/"))
	typeText(app, "how")

	press(app, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, app.cards)
	assert.Equal(t, 0, app.count)
	assert.False(t, app.noResults)
	assert.False(t, app.errVisible)
	assert.Empty(t, app.searchInput.Value())
	assert.Equal(t, MsgCleared, app.status)

	press(app, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, app.cards)
}

func TestApp_RevealFollowsGeneration(t *testing.T) {
	app, _ := newTestApp(t, users.Success(directory()))
	app.startRefresh(session.TriggerInitial)
	_, cmd := app.Update(fetchDoneMsg{outcome: users.Success(directory())})
	require.NotNil(t, cmd, "a render schedules the reveal")
	assert.Equal(t, 0, app.revealed)

	seq := app.revealSeq
	app.Update(cardRevealMsg{seq: seq, index: 0})
	assert.Equal(t, 1, app.revealed)

	app.Update(cardRevealMsg{seq: seq - 1, index: 2})
	assert.Equal(t, 1, app.revealed, "stale generations are ignored")

	app.Update(cardRevealMsg{seq: seq, index: 2})
	assert.Equal(t, 3, app.revealed)
}

func TestApp_RevealNextUsesStaggerDifference(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	first := app.revealNext(app.revealSeq, 0)
	require.NotNil(t, first)
	msg, ok := first().(cardRevealMsg)
	require.True(t, ok, "the first card has no delay")
	assert.Equal(t, 0, msg.index)

	assert.Nil(t, app.revealNext(app.revealSeq, len(app.cards)))
}

func TestApp_SelectionAndOpen(t *testing.T) {
	app, op := loadedApp(t, users.Success(directory()))

	press(app, runes("j"))
	assert.Equal(t, 1, app.selected)
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, app.selected, "selection stops at the last card")
	press(app, runes("k"))
	assert.Equal(t, 1, app.selected)

	cmd := press(app, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, linkOpenedMsg{link: "http://anastasia.net"}, msg)

	cmd = press(app, tea.KeyMsg{Type: tea.KeyCtrlE})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"http://anastasia.net", "mailto:Shanna@melissa.tv"}, op.opened)

	app.Update(msg)
	assert.Contains(t, app.status, "Opened")
}

func TestApp_OpenFailureReportsStatus(t *testing.T) {
	app, op := loadedApp(t, users.Success(directory()))
	op.err = errors.New("no display")

	cmd := press(app, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	msg := cmd()
	em, ok := msg.(errorMsg)
	require.True(t, ok)
	assert.Equal(t, "open http://hildegard.org: no display", em.Error())
	assert.ErrorIs(t, em, op.err)

	app.Update(msg)
	assert.Equal(t, StatusError, app.statusKind)
	assert.Equal(t, "✗ open http://hildegard.org: no display", app.status)
	assert.False(t, app.errVisible, "link failures never touch the fetch banner")
}

func TestApp_OpenWithoutCards(t *testing.T) {
	app, op := loadedApp(t, users.Success(nil))

	press(app, tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.Equal(t, MsgNoSelection, app.status)
	assert.Empty(t, op.opened)
}

func TestApp_DetailView(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))
	press(app, runes("j"))

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewDetail, app.view)
	assert.Equal(t, 2, app.detailID)

	app.Update(detailRenderedMsg{id: 2, content: "Ervin Howell rendered"})
	assert.Contains(t, app.View(), "Ervin Howell rendered")

	app.Update(detailRenderedMsg{id: 1, content: "stale"})
	assert.NotContains(t, app.View(), "stale")

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewCards, app.view)
}

func TestApp_DetailClosesWhenCardDisappears(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewDetail, app.view)

	app.session.SetSearchTerm("howell")
	assert.Equal(t, ViewCards, app.view)
}

func TestApp_QuitCancelsContext(t *testing.T) {
	app, _ := newTestApp(t, users.Success(directory()))

	cmd := press(app, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, app.ctx.Err())
}

func TestApp_WindowResize(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, app.width)
	assert.Equal(t, 120, app.viewport.Width)
	assert.Greater(t, app.viewport.Height, 3)
	assert.Less(t, app.viewport.Height, 40)
}

func TestApp_ToggleHelp(t *testing.T) {
	app, _ := loadedApp(t, users.Success(directory()))

	press(app, runes("?"))
	assert.True(t, app.help.ShowAll)
	press(app, runes("?"))
	assert.False(t, app.help.ShowAll)
}
