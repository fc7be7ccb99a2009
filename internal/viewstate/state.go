package viewstate

import (
	"errors"

	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/service"
)

// User-facing messages of the error phases.
const (
	NotEnoughResultsMsg = "not enough qualifying results"
	LoadFailedMsg       = "could not load results"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Populated
	EmptyError
	FetchError
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case EmptyError:
		return "empty_error"
	case FetchError:
		return "fetch_error"
	default:
		return "unknown"
	}
}

// State is the value a renderer consumes. Transitions never mutate the receiver; they
// return the next State.
type State struct {
	Phase            Phase
	SelectedCategory model.Category
	Sections         []model.Section
	Loading          bool
	Error            string
	SelectedBook     *model.VolumeRecord
	// Seq is the sequence number of the most recently dispatched fetch cycle.
	Seq uint64
}

func NewState(category model.Category) State {
	return State{Phase: Idle, SelectedCategory: category}
}

// SelectCategory enters Loading for cat and returns the sequence number the new fetch
// cycle must carry.
func (s State) SelectCategory(cat model.Category) (State, uint64) {
	seq := s.Seq + 1
	return State{
		Phase:            Loading,
		SelectedCategory: cat,
		Loading:          true,
		Seq:              seq,
	}, seq
}

// Resolve applies the outcome of cycle seq. Outcomes of superseded cycles are dropped and
// reported with applied == false.
func (s State) Resolve(seq uint64, sections []model.Section, err error) (next State, applied bool) {
	if seq != s.Seq || s.Phase != Loading {
		return s, false
	}

	next = State{SelectedCategory: s.SelectedCategory, Seq: s.Seq, Sections: []model.Section{}}
	switch {
	case err == nil:
		next.Phase = Populated
		if sections != nil {
			next.Sections = sections
		}
	case errors.Is(err, service.ErrNotEnoughResults):
		next.Phase = EmptyError
		next.Error = NotEnoughResultsMsg
	default:
		next.Phase = FetchError
		next.Error = LoadFailedMsg
	}

	return next, true
}

// SelectBook opens the detail view. It is a no-op unless the list is populated.
func (s State) SelectBook(item model.VolumeRecord) State {
	if s.Phase != Populated || s.Loading || len(s.Sections) == 0 {
		return s
	}
	next := s
	next.SelectedBook = &item
	return next
}

// ClearSelection returns from the detail view to the list.
func (s State) ClearSelection() State {
	if s.SelectedBook == nil {
		return s
	}
	next := s
	next.SelectedBook = nil
	return next
}

// Book returns the record at the given section and item position.
func (s State) Book(section, item int) (model.VolumeRecord, bool) {
	if section < 0 || section >= len(s.Sections) {
		return model.VolumeRecord{}, false
	}
	items := s.Sections[section].Items
	if item < 0 || item >= len(items) {
		return model.VolumeRecord{}, false
	}
	return items[item], true
}
