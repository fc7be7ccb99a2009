package model

type Section struct {
	AuthorKey string
	Items     []VolumeRecord
}

// CountItems returns the number of records across all sections.
func CountItems(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Items)
	}
	return n
}
