package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/users"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)

func sampleRecords() []users.Record {
	return []users.Record{
		{ID: 1, Name: "Ann Lee", Email: "a@x.com", Username: "ann", Company: users.Company{Name: "Acme"}},
		{ID: 2, Name: "Bo Kim", Email: "b@y.com", Username: "bo", Company: users.Company{Name: "Zenith"}},
	}
}

// scriptedFetcher returns queued outcomes in order and counts calls.
type scriptedFetcher struct {
	mu       sync.Mutex
	outcomes []users.Outcome
	calls    int
}

func (f *scriptedFetcher) FetchUsers(ctx context.Context) users.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.outcomes) == 0 {
		return users.NetworkFailure(context.Canceled)
	}
	next := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return next
}

// blockingFetcher parks until release is closed.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	outcome users.Outcome
	calls   atomic.Int32
}

func newBlockingFetcher(outcome users.Outcome) *blockingFetcher {
	return &blockingFetcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		outcome: outcome,
	}
}

func (f *blockingFetcher) FetchUsers(ctx context.Context) users.Outcome {
	f.calls.Add(1)
	f.started <- struct{}{}
	<-f.release
	return f.outcome
}

func newSession(f Fetcher) (*Session, *presenter.Recorder) {
	rec := presenter.NewRecorder()
	s := New(f, presenter.New(rec, 100*time.Millisecond), WithClock(func() time.Time { return fixedNow }))
	return s, rec
}

func cardIDs(cards []presenter.Card) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestSession_InitialLoadSuccess(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)

	assert.Equal(t, StateIdle, s.State())
	require.True(t, s.Refresh(context.Background(), TriggerInitial))

	assert.Equal(t, StateRenderedSuccess, s.State())
	assert.False(t, rec.Loading)
	assert.False(t, rec.ErrorVisible)
	assert.False(t, rec.NoResults)
	assert.Equal(t, []int{1, 2}, cardIDs(rec.Cards))
	assert.Equal(t, 2, rec.Count)
	assert.Equal(t, fixedNow, rec.LastUpdated)
	assert.Equal(t, 1, s.FetchesIssued())
}

func TestSession_BeginRefreshShowsLoadingAndHidesError(t *testing.T) {
	s, rec := newSession(&scriptedFetcher{})
	rec.ShowError("stale")

	require.True(t, s.BeginRefresh(TriggerRefresh))

	assert.Equal(t, StateLoading, s.State())
	assert.True(t, rec.Loading)
	assert.False(t, rec.ErrorVisible)
}

func TestSession_RefreshWhileLoadingIsDropped(t *testing.T) {
	f := newBlockingFetcher(users.Success(sampleRecords()))
	s, rec := newSession(f)

	done := make(chan bool)
	go func() {
		done <- s.Refresh(context.Background(), TriggerInitial)
	}()
	<-f.started

	assert.False(t, s.Refresh(context.Background(), TriggerRefresh))
	assert.False(t, s.BeginRefresh(TriggerShortcut))
	assert.Equal(t, 1, s.FetchesIssued())
	assert.Equal(t, int32(1), f.calls.Load())
	assert.True(t, rec.Loading)

	close(f.release)
	assert.True(t, <-done)
	assert.Equal(t, StateRenderedSuccess, s.State())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestSession_SearchDoesNotWaitOnFetch(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)
	require.True(t, s.Refresh(context.Background(), TriggerInitial))

	blocking := newBlockingFetcher(users.Success(sampleRecords()))
	s.fetcher = blocking

	done := make(chan bool)
	go func() { done <- s.Refresh(context.Background(), TriggerInitial) }()
	<-blocking.started

	searched := make(chan struct{})
	go func() {
		s.SetSearchTerm("an")
		close(searched)
	}()

	select {
	case <-searched:
	case <-time.After(2 * time.Second):
		t.Fatal("search blocked on the outstanding fetch")
	}
	assert.Equal(t, []int{1}, cardIDs(rec.Cards))
	assert.Equal(t, 1, rec.Count)

	close(blocking.release)
	<-done
}

func TestSession_StalledFetchStaysLoading(t *testing.T) {
	f := newBlockingFetcher(users.Success(nil))
	s, rec := newSession(f)

	done := make(chan bool)
	go func() { done <- s.Refresh(context.Background(), TriggerInitial) }()
	<-f.started

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateLoading, s.State())
	assert.True(t, rec.Loading)

	close(f.release)
	<-done
	assert.False(t, rec.Loading)
}

func TestSession_HTTPErrorsLeaveDatasetUntouched(t *testing.T) {
	for _, status := range []int{404, 500} {
		f := &scriptedFetcher{outcomes: []users.Outcome{
			users.Success(sampleRecords()),
			users.HTTPFailure(status),
		}}
		s, rec := newSession(f)

		require.True(t, s.Refresh(context.Background(), TriggerInitial))
		require.True(t, s.Refresh(context.Background(), TriggerRefresh))

		assert.Equal(t, StateRenderedError, s.State())
		assert.True(t, rec.ErrorVisible)
		assert.False(t, rec.Loading)
		assert.Equal(t, []int{1, 2}, cardIDs(rec.Cards), "status %d", status)
		assert.Equal(t, 2, s.Total())
		assert.Equal(t, fixedNow, rec.LastUpdated)
	}
}

func TestSession_404And500MessagesDiffer(t *testing.T) {
	messages := map[int]string{}
	for _, status := range []int{404, 500} {
		f := &scriptedFetcher{outcomes: []users.Outcome{users.HTTPFailure(status)}}
		s, rec := newSession(f)
		s.Refresh(context.Background(), TriggerInitial)
		messages[status] = rec.ErrorMessage
	}

	assert.NotEqual(t, messages[404], messages[500])
	assert.Equal(t, users.MsgNotFound, messages[404])
	assert.Equal(t, users.MsgServerError, messages[500])
}

func TestSession_NetworkAndParseErrors(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{
		users.NetworkFailure(context.DeadlineExceeded),
		users.ParseFailure(assert.AnError),
	}}
	s, rec := newSession(f)

	s.Refresh(context.Background(), TriggerInitial)
	assert.Equal(t, users.MsgNetworkError, rec.ErrorMessage)
	assert.Equal(t, StateRenderedError, s.State())

	s.Refresh(context.Background(), TriggerRefresh)
	assert.Contains(t, rec.ErrorMessage, "Parse error")
	assert.Equal(t, 0, s.Total())
}

func TestSession_SuccessAfterFailureClearsBannerEvenWhenEmpty(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{
		users.Success(sampleRecords()),
		users.HTTPFailure(500),
		users.Success([]users.Record{}),
	}}
	s, rec := newSession(f)

	s.Refresh(context.Background(), TriggerInitial)
	s.Refresh(context.Background(), TriggerRefresh)
	require.True(t, rec.ErrorVisible)

	s.Refresh(context.Background(), TriggerRefresh)

	assert.False(t, rec.ErrorVisible)
	assert.True(t, rec.NoResults)
	assert.Empty(t, rec.Cards)
	assert.Equal(t, 0, rec.Count)
	assert.Equal(t, 0, s.Total())
	assert.Equal(t, StateRenderedSuccess, s.State())
}

func TestSession_SearchTerm(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)
	s.Refresh(context.Background(), TriggerInitial)

	s.SetSearchTerm("an")
	assert.Equal(t, []int{1}, cardIDs(rec.Cards))
	assert.Equal(t, 1, rec.Count)

	s.SetSearchTerm("nobody")
	assert.True(t, rec.NoResults)
	assert.Equal(t, 0, rec.Count)

	s.SetSearchTerm("")
	assert.False(t, rec.NoResults)
	assert.Equal(t, []int{1, 2}, cardIDs(rec.Cards))
}

func TestSession_InitialLoadKeepsSearchTerm(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)

	s.SetSearchTerm("zen")
	s.Refresh(context.Background(), TriggerInitial)

	assert.Equal(t, "zen", s.SearchTerm())
	assert.Equal(t, []int{2}, cardIDs(rec.Cards))
}

func TestSession_ManualRefreshResetsSearchTerm(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{
		users.Success(sampleRecords()),
		users.Success(sampleRecords()),
	}}
	s, rec := newSession(f)
	s.Refresh(context.Background(), TriggerInitial)
	s.SetSearchTerm("zen")

	s.Refresh(context.Background(), TriggerShortcut)

	assert.Equal(t, "", s.SearchTerm())
	assert.Equal(t, []int{1, 2}, cardIDs(rec.Cards))
	assert.Equal(t, 2, rec.Count)
}

func TestSession_FailedRefreshKeepsSearchTerm(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{
		users.Success(sampleRecords()),
		users.HTTPFailure(404),
	}}
	s, _ := newSession(f)
	s.Refresh(context.Background(), TriggerInitial)
	s.SetSearchTerm("zen")

	s.Refresh(context.Background(), TriggerRefresh)

	assert.Equal(t, "zen", s.SearchTerm())
	assert.Equal(t, []int{2}, []int{s.Records()[0].ID})
}

func TestSession_ClearIsIdempotent(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)
	s.Refresh(context.Background(), TriggerInitial)
	s.SetSearchTerm("an")
	rec.ShowError("old")

	s.Clear()
	firstState, firstCount, firstCards := s.State(), rec.Count, len(rec.Cards)
	s.Clear()

	assert.Equal(t, StateRenderedSuccess, s.State())
	assert.Equal(t, firstState, s.State())
	assert.Equal(t, firstCount, rec.Count)
	assert.Equal(t, firstCards, len(rec.Cards))
	assert.Zero(t, rec.Count)
	assert.Empty(t, rec.Cards)
	assert.False(t, rec.NoResults)
	assert.False(t, rec.ErrorVisible)
	assert.Equal(t, "", s.SearchTerm())
	assert.Zero(t, s.Total())
}

func TestSession_ClearFromIdle(t *testing.T) {
	s, _ := newSession(&scriptedFetcher{})
	s.Clear()
	assert.Equal(t, StateRenderedSuccess, s.State())
}

func TestSession_FetchCompletingAfterClearIsApplied(t *testing.T) {
	f := newBlockingFetcher(users.Success(sampleRecords()))
	s, rec := newSession(f)

	done := make(chan bool)
	go func() { done <- s.Refresh(context.Background(), TriggerInitial) }()
	<-f.started

	s.Clear()
	assert.Equal(t, StateLoading, s.State(), "the in-flight guard survives a clear")
	assert.False(t, s.BeginRefresh(TriggerRefresh))

	close(f.release)
	<-done

	assert.Equal(t, StateRenderedSuccess, s.State())
	assert.Equal(t, []int{1, 2}, cardIDs(rec.Cards))
}

func TestSession_SplitBeginComplete(t *testing.T) {
	f := &scriptedFetcher{outcomes: []users.Outcome{users.Success(sampleRecords())}}
	s, rec := newSession(f)

	require.True(t, s.BeginRefresh(TriggerInitial))
	outcome := s.Fetch(context.Background())
	assert.True(t, rec.Loading)
	s.Complete(outcome)

	assert.False(t, rec.Loading)
	assert.Equal(t, StateRenderedSuccess, s.State())
}

type panickingFetcher struct{}

func (panickingFetcher) FetchUsers(context.Context) users.Outcome { panic("transport exploded") }

func TestSession_LoadingClearedWhenFetcherPanics(t *testing.T) {
	s, rec := newSession(panickingFetcher{})

	assert.Panics(t, func() { s.Refresh(context.Background(), TriggerInitial) })
	assert.False(t, rec.Loading)
	assert.Equal(t, StateRenderedError, s.State())
	assert.True(t, s.BeginRefresh(TriggerRefresh), "a panicking fetch must not wedge the guard")
}

func TestStateAndTriggerStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "rendered_success", StateRenderedSuccess.String())
	assert.Equal(t, "rendered_error", StateRenderedError.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.Equal(t, "initial", TriggerInitial.String())
	assert.Equal(t, "refresh", TriggerRefresh.String())
	assert.Equal(t, "shortcut", TriggerShortcut.String())
}

func TestSession_ID(t *testing.T) {
	a := New(&scriptedFetcher{}, presenter.New(presenter.NewRecorder(), 0))
	b := New(&scriptedFetcher{}, presenter.New(presenter.NewRecorder(), 0))

	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}
