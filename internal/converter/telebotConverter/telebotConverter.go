package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"book_catalog_tgbot/internal/aggregator"
	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/model/tg/tgCallback.go"
	"book_catalog_tgbot/internal/viewstate"

	tele "gopkg.in/telebot.v4"
)

const (
	descriptionLimit  = 150
	categoriesPerRow  = 3
	bookButtonsPerRow = 5

	noPublisher   = "No publisher"
	noDescription = "No description available."
	loadingText   = "Loading books..."
)

// Limits in UTF-16 code units, the way Telegram measures its 4096 unit message text.
const (
	detailDescriptionLimit = 3500
	detailFieldLimit       = 150
)

// listEntry addresses one record of a populated view.
type listEntry struct {
	section int
	item    int
	author  string
	book    model.VolumeRecord
}

func flatten(sections []model.Section) []listEntry {
	entries := make([]listEntry, 0, model.CountItems(sections))
	for s, section := range sections {
		for i, book := range section.Items {
			entries = append(entries, listEntry{section: s, item: i, author: section.AuthorKey, book: book})
		}
	}
	return entries
}

// ListPageCount is the number of list pages needed to show all sections.
func ListPageCount(sections []model.Section, booksPerPage int) int {
	total := model.CountItems(sections)
	if total == 0 || booksPerPage <= 0 {
		return 1
	}
	return (total + booksPerPage - 1) / booksPerPage
}

// ClampListPage keeps page inside the range of pages available for sections.
func ClampListPage(sections []model.Section, page, booksPerPage int) int {
	last := ListPageCount(sections, booksPerPage) - 1
	switch {
	case page < 0:
		return 0
	case page > last:
		return last
	default:
		return page
	}
}

// CatalogView renders the whole browser message for a state.
func CatalogView(st viewstate.State, categories model.Categories, listPage, booksPerPage int) (text string, markup *tele.ReplyMarkup) {
	switch {
	case st.Phase == viewstate.Populated && st.SelectedBook != nil:
		return BookDetails(*st.SelectedBook)
	case st.Phase == viewstate.Populated:
		return BooksPage(st, categories, listPage, booksPerPage)
	case st.Phase == viewstate.EmptyError || st.Phase == viewstate.FetchError:
		return ErrorView(st, categories)
	default:
		return LoadingView(st, categories)
	}
}

func categoryRows(markup *tele.ReplyMarkup, categories model.Categories, selected model.Category) []tele.Row {
	rows := make([]tele.Row, 0)
	for i, cat := range categories {
		if i%categoriesPerRow == 0 {
			rows = append(rows, make(tele.Row, 0, categoriesPerRow))
		}

		label := string(cat)
		if cat == selected {
			label = "• " + label
		}
		btn := markup.Data(label, tgCallback.Category+string(cat))
		rows[len(rows)-1] = append(rows[len(rows)-1], btn)
	}
	return rows
}

func LoadingView(st viewstate.State, categories model.Categories) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	text = fmt.Sprintf("Category: %s\n\n%s", st.SelectedCategory, loadingText)
	markup.Inline(categoryRows(markup, categories, st.SelectedCategory)...)
	return text, markup
}

func ErrorView(st viewstate.State, categories model.Categories) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	text = fmt.Sprintf("Category: %s\n\n%s", st.SelectedCategory, st.Error)
	markup.Inline(categoryRows(markup, categories, st.SelectedCategory)...)
	return text, markup
}

func BooksPage(st viewstate.State, categories model.Categories, listPage, booksPerPage int) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("Category: %s\n\n", st.SelectedCategory))

	menuRows := categoryRows(markup, categories, st.SelectedCategory)

	entries := flatten(st.Sections)
	if len(entries) == 0 {
		sb.WriteString("No books found.")
		markup.Inline(menuRows...)
		return sb.String(), markup
	}

	page := ClampListPage(st.Sections, listPage, booksPerPage)
	from := page * booksPerPage
	to := min(from+booksPerPage, len(entries))

	currentAuthor := ""
	bookRows := make([]tele.Row, 0)
	for i, entry := range entries[from:to] {
		if i == 0 || entry.author != currentAuthor {
			currentAuthor = entry.author
			sb.WriteString(fmt.Sprintf("[%s]\n\n", currentAuthor))
		}

		if i%bookButtonsPerRow == 0 {
			bookRows = append(bookRows, make(tele.Row, 0, bookButtonsPerRow))
		}

		ordinal := from + i + 1
		sb.WriteString(fmt.Sprintf("%d) %s\n%s\n%s\n\n", ordinal, entry.book.Title, publisherOrDefault(entry.book), Excerpt(entry.book.Description)))

		data := fmt.Sprintf("%s%d:%d:%d", tgCallback.ToBook, st.Seq, entry.section, entry.item)
		btn := markup.Data(strconv.Itoa(ordinal), data)
		bookRows[len(bookRows)-1] = append(bookRows[len(bookRows)-1], btn)
	}
	menuRows = append(menuRows, bookRows...)

	pages := ListPageCount(st.Sections, booksPerPage)
	paginationBtns := make([]tele.Btn, 0)
	if page > 0 {
		paginationBtns = append(paginationBtns, markup.Data("back", tgCallback.ToListPage+strconv.Itoa(page-1)))
	}

	if pages > 1 {
		paginationBtns = append(paginationBtns, markup.Data(fmt.Sprintf("page %d/%d", page+1, pages), tgCallback.PageNumber))
	}

	if page < pages-1 {
		paginationBtns = append(paginationBtns, markup.Data("next", tgCallback.ToListPage+strconv.Itoa(page+1)))
	}

	if len(paginationBtns) > 0 {
		menuRows = append(menuRows, markup.Row(paginationBtns...))
	}

	markup.Inline(menuRows...)

	return sb.String(), markup
}

func BookDetails(book model.VolumeRecord) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	sb := strings.Builder{}

	sb.WriteString(truncate(book.Title, detailFieldLimit) + "\n\n")

	authors := strings.Join(book.Authors, ", ")
	if strings.TrimSpace(authors) == "" {
		authors = aggregator.UnknownAuthor
	}
	sb.WriteString(truncate(authors, detailFieldLimit) + "\n\n")

	if book.Publisher != "" {
		sb.WriteString(fmt.Sprintf("Publisher: %s\n\n", truncate(book.Publisher, detailFieldLimit)))
	}

	if book.Description != "" {
		sb.WriteString(truncate(book.Description, detailDescriptionLimit))
	} else {
		sb.WriteString(noDescription)
	}

	backBtn := markup.Data("← back", tgCallback.BackToList)
	markup.Inline(markup.Row(backBtn))

	return sb.String(), markup
}

// Excerpt cuts a description to the list preview length.
func Excerpt(description string) string {
	runes := []rune(description)
	if len(runes) > descriptionLimit {
		runes = runes[:descriptionLimit]
	}
	return string(runes) + "..."
}

// truncate cuts s to at most limit UTF-16 code units and marks the cut with "...".
func truncate(s string, limit int) string {
	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return s[:i] + "..."
		}
		units += n
	}
	return s
}

func publisherOrDefault(book model.VolumeRecord) string {
	if book.Publisher == "" {
		return noPublisher
	}
	return book.Publisher
}
