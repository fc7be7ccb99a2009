package model

import "slices"

type Category string

// Categories is the fixed filter vocabulary in display order.
type Categories []Category

func NewCategories(names []string) Categories {
	cats := make(Categories, 0, len(names))
	for _, n := range names {
		cats = append(cats, Category(n))
	}
	return cats
}

func (c Categories) Contains(cat Category) bool {
	return slices.Contains(c, cat)
}
