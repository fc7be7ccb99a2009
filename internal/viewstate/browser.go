package viewstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/utils"

	"github.com/google/uuid"
)

type Loader interface {
	Load(ctx context.Context, category model.Category) ([]model.Section, error)
}

type intentKind int

const (
	selectCategory intentKind = iota
	selectBook
	clearSelection
)

type intent struct {
	kind     intentKind
	category model.Category
	book     model.VolumeRecord
	// seq of the list the book was picked from
	seq uint64
}

type cycleResult struct {
	seq      uint64
	sections []model.Section
	err      error
}

// Browser owns one State. Every transition runs on a single loop goroutine, fetch cycles
// run concurrently and report back to that loop, where results of superseded cycles are
// discarded.
//
// OnChange is invoked on the loop goroutine after each transition and must not call
// Browser methods synchronously.
type Browser struct {
	loader          Loader
	categories      model.Categories
	defaultCategory model.Category
	onChange        func(State)

	intents chan intent
	results chan cycleResult
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	state     atomic.Pointer[State]
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

func NewBrowser(loader Loader, categories model.Categories, defaultCategory model.Category, onChange func(State)) *Browser {
	b := &Browser{
		loader:          loader,
		categories:      categories,
		defaultCategory: defaultCategory,
		onChange:        onChange,
		intents:         make(chan intent),
		results:         make(chan cycleResult),
		done:            make(chan struct{}),
	}
	initial := NewState(defaultCategory)
	b.state.Store(&initial)
	return b
}

// Start launches the loop and the initial fetch cycle for the default category.
func (b *Browser) Start(ctx context.Context) error {
	var err error
	b.startOnce.Do(func() {
		b.ctx, b.cancel = context.WithCancel(context.WithoutCancel(ctx))
		b.wg.Add(1)
		go b.run(b.State())
		err = b.SelectCategory(b.defaultCategory)
	})
	return err
}

// Close stops the loop, cancels in-flight fetch cycles and waits for them to return.
func (b *Browser) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		if b.cancel != nil {
			b.cancel()
		}
	})
	b.wg.Wait()
}

// State returns the latest published state.
func (b *Browser) State() State {
	return *b.state.Load()
}

func (b *Browser) Categories() model.Categories {
	return b.categories
}

func (b *Browser) SelectCategory(cat model.Category) error {
	if !b.categories.Contains(cat) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}
	return b.send(intent{kind: selectCategory, category: cat})
}

// SelectBook opens item picked from the list of fetch cycle seq. The intent is ignored
// when another cycle has been dispatched since.
func (b *Browser) SelectBook(seq uint64, item model.VolumeRecord) error {
	return b.send(intent{kind: selectBook, book: item, seq: seq})
}

func (b *Browser) ClearSelection() error {
	return b.send(intent{kind: clearSelection})
}

func (b *Browser) send(in intent) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	select {
	case b.intents <- in:
		return nil
	case <-b.done:
		return ErrClosed
	}
}

func (b *Browser) run(state State) {
	op := "Browser.run"
	defer b.wg.Done()

	var cancelCycle context.CancelFunc
	defer func() {
		if cancelCycle != nil {
			cancelCycle()
		}
	}()

	for {
		select {
		case <-b.done:
			return

		case in := <-b.intents:
			next := state
			switch in.kind {
			case selectCategory:
				var seq uint64
				next, seq = state.SelectCategory(in.category)
				if cancelCycle != nil {
					cancelCycle()
				}
				var cycleCtx context.Context
				cycleCtx, cancelCycle = context.WithCancel(b.ctx)
				b.dispatch(cycleCtx, seq, in.category)
			case selectBook:
				if in.seq != state.Seq {
					slog.Debug("book from an outdated list ignored", slog.String("op", op), slog.Uint64("seq", in.seq), slog.Uint64("currentSeq", state.Seq))
					continue
				}
				next = state.SelectBook(in.book)
				if next.SelectedBook == state.SelectedBook {
					slog.Debug("book selection ignored", slog.String("op", op), slog.String("phase", state.Phase.String()))
					continue
				}
			case clearSelection:
				if state.SelectedBook == nil {
					continue
				}
				next = state.ClearSelection()
			}
			state = b.publish(next)

		case res := <-b.results:
			next, applied := state.Resolve(res.seq, res.sections, res.err)
			if !applied {
				slog.Debug(
					"stale fetch cycle result dropped",
					slog.String("op", op),
					slog.Uint64("seq", res.seq),
					slog.Uint64("currentSeq", state.Seq),
				)
				continue
			}
			state = b.publish(next)
		}
	}
}

func (b *Browser) dispatch(ctx context.Context, seq uint64, category model.Category) {
	ctx = utils.ContextWithRqID(ctx, uuid.NewString())

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		sections, err := b.loader.Load(ctx, category)
		select {
		case b.results <- cycleResult{seq: seq, sections: sections, err: err}:
		case <-b.done:
		}
	}()
}

func (b *Browser) publish(next State) State {
	b.state.Store(&next)
	if b.onChange != nil {
		b.onChange(next)
	}
	return next
}
