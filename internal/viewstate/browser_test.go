package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/service"

	"github.com/stretchr/testify/suite"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type loadReply struct {
	sections []model.Section
	err      error
}

type loadCall struct {
	category model.Category
	ctx      context.Context
	reply    chan loadReply
}

// fakeLoader blocks every Load until the test replies to it.
type fakeLoader struct {
	honorCtx bool

	mu    sync.Mutex
	calls []*loadCall
}

func (l *fakeLoader) Load(ctx context.Context, category model.Category) ([]model.Section, error) {
	c := &loadCall{category: category, ctx: ctx, reply: make(chan loadReply, 1)}
	l.mu.Lock()
	l.calls = append(l.calls, c)
	l.mu.Unlock()

	if !l.honorCtx {
		r := <-c.reply
		return r.sections, r.err
	}

	select {
	case r := <-c.reply:
		return r.sections, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *fakeLoader) call(i int) *loadCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[i]
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) onChange(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

type BrowserSuite struct {
	suite.Suite
	loader   *fakeLoader
	recorder *recorder
	browser  *Browser
}

func TestBrowserSuite(t *testing.T) {
	suite.Run(t, new(BrowserSuite))
}

func (s *BrowserSuite) SetupTest() {
	s.loader = &fakeLoader{honorCtx: true}
	s.recorder = &recorder{}
	s.browser = NewBrowser(
		s.loader,
		model.NewCategories([]string{"Fiction", "Mystery", "Fantasy"}),
		"Fiction",
		s.recorder.onChange,
	)
}

func (s *BrowserSuite) TearDownTest() {
	s.browser.Close()
}

func (s *BrowserSuite) waitCall(i int) *loadCall {
	s.Require().Eventually(func() bool { return s.loader.count() > i }, waitFor, tick)
	return s.loader.call(i)
}

func (s *BrowserSuite) waitPhase(phase Phase) State {
	s.Require().Eventually(func() bool { return s.browser.State().Phase == phase }, waitFor, tick)
	return s.browser.State()
}

func (s *BrowserSuite) startPopulated() {
	s.Require().NoError(s.browser.Start(context.Background()))
	s.waitCall(0).reply <- loadReply{sections: testSections}
	s.waitPhase(Populated)
}

func (s *BrowserSuite) TestStart_LoadsDefaultCategory() {
	s.Equal(Idle, s.browser.State().Phase)

	s.Require().NoError(s.browser.Start(context.Background()))

	call := s.waitCall(0)
	s.Equal(model.Category("Fiction"), call.category)
	loading := s.waitPhase(Loading)
	s.True(loading.Loading)

	call.reply <- loadReply{sections: testSections}
	populated := s.waitPhase(Populated)

	s.False(populated.Loading)
	s.Equal(testSections, populated.Sections)
	s.Empty(populated.Error)

	states := s.recorder.snapshot()
	s.Require().Len(states, 2)
	s.Equal(Loading, states[0].Phase)
	s.Equal(Populated, states[1].Phase)
}

func (s *BrowserSuite) TestStart_Twice() {
	s.Require().NoError(s.browser.Start(context.Background()))
	s.Require().NoError(s.browser.Start(context.Background()))

	s.waitCall(0).reply <- loadReply{sections: testSections}
	s.waitPhase(Populated)
	s.Equal(1, s.loader.count())
}

func (s *BrowserSuite) TestSelectCategory_LastRequestWins() {
	s.loader.honorCtx = false

	s.Require().NoError(s.browser.Start(context.Background()))
	fiction := s.waitCall(0)

	s.Require().NoError(s.browser.SelectCategory("Mystery"))
	mystery := s.waitCall(1)
	s.Equal(model.Category("Mystery"), mystery.category)

	// Fiction resolves after Mystery was requested and must not be shown.
	fiction.reply <- loadReply{sections: testSections}
	mystery.reply <- loadReply{err: fmt.Errorf("%w: boom", service.ErrUnavailable)}

	final := s.waitPhase(FetchError)
	s.Equal(model.Category("Mystery"), final.SelectedCategory)
	s.Equal(LoadFailedMsg, final.Error)
	s.Empty(final.Sections)

	for _, st := range s.recorder.snapshot() {
		s.NotEqual(Populated, st.Phase)
	}
}

func (s *BrowserSuite) TestSelectCategory_CancelsSupersededCycle() {
	s.Require().NoError(s.browser.Start(context.Background()))
	fiction := s.waitCall(0)

	s.Require().NoError(s.browser.SelectCategory("Fantasy"))
	s.waitCall(1)

	s.Eventually(func() bool { return fiction.ctx.Err() != nil }, waitFor, tick)
	s.Require().NoError(s.loader.call(1).ctx.Err())
}

func (s *BrowserSuite) TestSelectCategory_Unknown() {
	s.startPopulated()

	err := s.browser.SelectCategory("Poetry")

	s.ErrorIs(err, ErrUnknownCategory)
	s.Equal(1, s.loader.count())
	s.Equal(Populated, s.browser.State().Phase)
}

func (s *BrowserSuite) TestSelectCategory_BelowThreshold() {
	s.Require().NoError(s.browser.Start(context.Background()))
	s.waitCall(0).reply <- loadReply{err: fmt.Errorf("%w: 3 of 10 required", service.ErrNotEnoughResults)}

	st := s.waitPhase(EmptyError)

	s.Equal(NotEnoughResultsMsg, st.Error)
	s.NotNil(st.Sections)
	s.Empty(st.Sections)
	s.False(st.Loading)
}

func (s *BrowserSuite) TestSelectCategory_FromErrorRefetches() {
	s.Require().NoError(s.browser.Start(context.Background()))
	s.waitCall(0).reply <- loadReply{err: errors.New("boom")}
	s.waitPhase(FetchError)

	s.Require().NoError(s.browser.SelectCategory("Fiction"))
	s.waitCall(1).reply <- loadReply{sections: testSections}

	st := s.waitPhase(Populated)
	s.Empty(st.Error)
	s.Equal(uint64(2), st.Seq)
}

func (s *BrowserSuite) TestSelectBook_WhileLoadingIsIgnored() {
	s.Require().NoError(s.browser.Start(context.Background()))
	call := s.waitCall(0)

	s.Require().NoError(s.browser.SelectBook(1, model.VolumeRecord{Title: "a1"}))
	// The loop handles intents in order, so once this one is accepted the previous one is done.
	s.Require().NoError(s.browser.ClearSelection())

	st := s.browser.State()
	s.Equal(Loading, st.Phase)
	s.Nil(st.SelectedBook)
	s.Len(s.recorder.snapshot(), 1)

	call.reply <- loadReply{sections: testSections}
	s.waitPhase(Populated)
}

func (s *BrowserSuite) TestSelectBook_AndClear() {
	s.startPopulated()
	book := testSections[1].Items[0]

	s.Require().NoError(s.browser.SelectBook(1, book))
	s.Eventually(func() bool { return s.browser.State().SelectedBook != nil }, waitFor, tick)
	s.Equal(book, *s.browser.State().SelectedBook)

	s.Require().NoError(s.browser.ClearSelection())
	s.Eventually(func() bool { return s.browser.State().SelectedBook == nil }, waitFor, tick)
	s.Equal(Populated, s.browser.State().Phase)
}

func (s *BrowserSuite) TestSelectBook_FromOutdatedListIsIgnored() {
	s.startPopulated()
	s.Require().NoError(s.browser.SelectCategory("Mystery"))
	s.waitCall(1).reply <- loadReply{sections: testSections}
	s.Require().Eventually(func() bool {
		st := s.browser.State()
		return st.Phase == Populated && st.SelectedCategory == "Mystery"
	}, waitFor, tick)
	published := len(s.recorder.snapshot())

	// picked from the Fiction list of cycle 1, delivered after Mystery (cycle 2) populated
	s.Require().NoError(s.browser.SelectBook(1, testSections[0].Items[0]))
	// intents are handled in order, so the previous one is done once this one is accepted
	s.Require().NoError(s.browser.ClearSelection())

	st := s.browser.State()
	s.Nil(st.SelectedBook)
	s.Equal(uint64(2), st.Seq)
	s.Len(s.recorder.snapshot(), published)

	s.Require().NoError(s.browser.SelectBook(2, testSections[0].Items[0]))
	s.Eventually(func() bool { return s.browser.State().SelectedBook != nil }, waitFor, tick)
}

func (s *BrowserSuite) TestSelectCategory_ClearsSelection() {
	s.startPopulated()
	s.Require().NoError(s.browser.SelectBook(1, testSections[0].Items[0]))
	s.Eventually(func() bool { return s.browser.State().SelectedBook != nil }, waitFor, tick)

	s.Require().NoError(s.browser.SelectCategory("Mystery"))
	st := s.waitPhase(Loading)

	s.Nil(st.SelectedBook)
	s.Equal(model.Category("Mystery"), st.SelectedCategory)
	s.waitCall(1).reply <- loadReply{sections: testSections}
	s.waitPhase(Populated)
}

func (s *BrowserSuite) TestClose_RejectsIntents() {
	s.Require().NoError(s.browser.Start(context.Background()))
	s.waitCall(0)

	s.browser.Close()

	s.ErrorIs(s.browser.SelectCategory("Mystery"), ErrClosed)
	s.ErrorIs(s.browser.SelectBook(1, model.VolumeRecord{}), ErrClosed)
	s.ErrorIs(s.browser.ClearSelection(), ErrClosed)
	s.Equal(Loading, s.browser.State().Phase)
}

func (s *BrowserSuite) TestClose_BeforeStart() {
	s.browser.Close()

	s.ErrorIs(s.browser.SelectCategory("Fiction"), ErrClosed)
	s.Equal(0, s.loader.count())
}
