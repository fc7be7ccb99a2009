package aggregator

import (
	"fmt"
	"strings"

	"book_catalog_tgbot/internal/model"
)

// UnknownAuthor keys the section of records that carry no author.
const UnknownAuthor = "Unknown author"

// Aggregate filters raw records, groups them by primary author and checks that at least
// minResults records survived. Below the threshold no sections are returned.
func Aggregate(raw []model.VolumeRecord, minResults int) ([]model.Section, error) {
	filtered := Filter(raw)
	if len(filtered) < minResults {
		return nil, fmt.Errorf("%w: %d of %d required", ErrInsufficientResults, len(filtered), minResults)
	}
	return Group(filtered), nil
}

// Filter keeps the records that have both a description and a publisher.
func Filter(raw []model.VolumeRecord) []model.VolumeRecord {
	filtered := make([]model.VolumeRecord, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Description) == "" || strings.TrimSpace(r.Publisher) == "" {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// Group partitions records by AuthorKey. Sections keep the order in which their key first
// appears and records keep their input order.
func Group(records []model.VolumeRecord) []model.Section {
	sections := make([]model.Section, 0)
	idx := make(map[string]int)

	for _, r := range records {
		key := AuthorKey(r)
		i, ok := idx[key]
		if !ok {
			i = len(sections)
			idx[key] = i
			sections = append(sections, model.Section{AuthorKey: key})
		}
		sections[i].Items = append(sections[i].Items, r)
	}

	return sections
}

func AuthorKey(r model.VolumeRecord) string {
	if len(r.Authors) == 0 || strings.TrimSpace(r.Authors[0]) == "" {
		return UnknownAuthor
	}
	return r.Authors[0]
}

// ByAuthor exposes Aggregate through a value so callers can depend on an interface.
type ByAuthor struct{}

func (ByAuthor) Aggregate(raw []model.VolumeRecord, minResults int) ([]model.Section, error) {
	return Aggregate(raw, minResults)
}
