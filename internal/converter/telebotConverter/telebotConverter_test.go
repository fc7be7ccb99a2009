package telebotConverter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf16"

	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/model/tg/tgCallback.go"
	"book_catalog_tgbot/internal/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

var categories = model.NewCategories([]string{"Fiction", "Mystery", "Fantasy", "Romance"})

func book(title string) model.VolumeRecord {
	return model.VolumeRecord{Title: title, Authors: []string{"Ann"}, Publisher: "Pub", Description: "About " + title}
}

func populatedState(sections []model.Section) viewstate.State {
	st, seq := viewstate.NewState("Fiction").SelectCategory("Fiction")
	st, _ = st.Resolve(seq, sections, nil)
	return st
}

func buttons(markup *tele.ReplyMarkup) []tele.InlineButton {
	var all []tele.InlineButton
	for _, row := range markup.InlineKeyboard {
		all = append(all, row...)
	}
	return all
}

func findButton(markup *tele.ReplyMarkup, unique string) (tele.InlineButton, bool) {
	for _, btn := range buttons(markup) {
		if btn.Unique == unique {
			return btn, true
		}
	}
	return tele.InlineButton{}, false
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short...", Excerpt("short"))

	long := strings.Repeat("я", 200)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("я", 150)+"...", got)
}

func TestListPageCount(t *testing.T) {
	sections := []model.Section{
		{AuthorKey: "Ann", Items: []model.VolumeRecord{book("a"), book("b"), book("c")}},
		{AuthorKey: "Bob", Items: []model.VolumeRecord{book("d"), book("e")}},
	}

	assert.Equal(t, 3, ListPageCount(sections, 2))
	assert.Equal(t, 1, ListPageCount(sections, 5))
	assert.Equal(t, 1, ListPageCount(nil, 5))

	assert.Equal(t, 0, ClampListPage(sections, -1, 2))
	assert.Equal(t, 2, ClampListPage(sections, 7, 2))
	assert.Equal(t, 1, ClampListPage(sections, 1, 2))
}

func TestCatalogView_Loading(t *testing.T) {
	st, _ := viewstate.NewState("Fiction").SelectCategory("Mystery")

	text, markup := CatalogView(st, categories, 0, 10)

	assert.Contains(t, text, "Category: Mystery")
	assert.Contains(t, text, loadingText)

	btn, ok := findButton(markup, tgCallback.Category+"Mystery")
	require.True(t, ok)
	assert.Equal(t, "• Mystery", btn.Text)

	btn, ok = findButton(markup, tgCallback.Category+"Fiction")
	require.True(t, ok)
	assert.Equal(t, "Fiction", btn.Text)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 3)
}

func TestCatalogView_Error(t *testing.T) {
	st, seq := viewstate.NewState("Fiction").SelectCategory("Fiction")
	st, _ = st.Resolve(seq, nil, fmt.Errorf("boom"))

	text, markup := CatalogView(st, categories, 0, 10)

	assert.Contains(t, text, viewstate.LoadFailedMsg)
	assert.Len(t, buttons(markup), len(categories))
}

func TestCatalogView_BooksPage(t *testing.T) {
	sections := []model.Section{
		{AuthorKey: "Ann", Items: []model.VolumeRecord{book("a1"), book("a2"), book("a3")}},
		{AuthorKey: "Bob", Items: []model.VolumeRecord{
			{Title: "b1", Authors: []string{"Bob"}, Description: strings.Repeat("x", 160)},
		}},
	}
	st := populatedState(sections)

	text, markup := CatalogView(st, categories, 1, 2)

	assert.NotContains(t, text, "a1")
	assert.Contains(t, text, "[Ann]\n\n3) a3\nPub\nAbout a3...")
	assert.Contains(t, text, "[Bob]\n\n4) b1\nNo publisher\n"+strings.Repeat("x", 150)+"...")

	_, ok := findButton(markup, fmt.Sprintf("%s%d:0:2", tgCallback.ToBook, st.Seq))
	assert.True(t, ok)
	_, ok = findButton(markup, fmt.Sprintf("%s%d:1:0", tgCallback.ToBook, st.Seq))
	assert.True(t, ok)

	back, ok := findButton(markup, tgCallback.ToListPage+"0")
	require.True(t, ok)
	assert.Equal(t, "back", back.Text)
	_, ok = findButton(markup, tgCallback.ToListPage+"2")
	assert.False(t, ok)

	counter, ok := findButton(markup, tgCallback.PageNumber)
	require.True(t, ok)
	assert.Equal(t, "page 2/2", counter.Text)
}

func TestCatalogView_BooksPageClampsPage(t *testing.T) {
	st := populatedState([]model.Section{{AuthorKey: "Ann", Items: []model.VolumeRecord{book("a1")}}})

	text, markup := CatalogView(st, categories, 5, 10)

	assert.Contains(t, text, "1) a1")
	_, ok := findButton(markup, tgCallback.PageNumber)
	assert.False(t, ok)
}

func TestCatalogView_Empty(t *testing.T) {
	st := populatedState(nil)

	text, markup := CatalogView(st, categories, 0, 10)

	assert.Contains(t, text, "No books found.")
	assert.Len(t, buttons(markup), len(categories))
}

func TestCatalogView_Detail(t *testing.T) {
	b := model.VolumeRecord{Title: "Dune", Authors: []string{"Frank Herbert", "Brian Herbert"}, Publisher: "Ace", Description: "Spice."}
	st := populatedState([]model.Section{{AuthorKey: "Frank Herbert", Items: []model.VolumeRecord{b}}}).SelectBook(b)

	text, markup := CatalogView(st, categories, 0, 10)

	assert.Equal(t, "Dune\n\nFrank Herbert, Brian Herbert\n\nPublisher: Ace\n\nSpice.", text)
	require.Len(t, buttons(markup), 1)
	assert.Equal(t, tgCallback.BackToList, buttons(markup)[0].Unique)
}

func TestBookDetails_MissingFields(t *testing.T) {
	text, _ := BookDetails(model.VolumeRecord{Title: "Anon"})

	assert.Equal(t, "Anon\n\nUnknown author\n\nNo description available.", text)
}

func TestBookDetails_FitsTelegramMessage(t *testing.T) {
	long := model.VolumeRecord{
		Title:       strings.Repeat("T", 500),
		Authors:     []string{strings.Repeat("A", 300), strings.Repeat("B", 300)},
		Publisher:   strings.Repeat("P", 400),
		Description: strings.Repeat("d", 5000),
	}

	text, _ := BookDetails(long)

	assert.Less(t, len(utf16.Encode([]rune(text))), 4096)
	assert.True(t, strings.HasSuffix(text, strings.Repeat("d", detailDescriptionLimit)+"..."))
}

func TestBookDetails_WideRunesFitTelegramMessage(t *testing.T) {
	text, _ := BookDetails(model.VolumeRecord{Title: "Emoji", Description: strings.Repeat("📚", 5000)})

	assert.Less(t, len(utf16.Encode([]rune(text))), 4096)
	assert.Equal(t, detailDescriptionLimit/2, strings.Count(text, "📚"))
}

func TestBookDetails_ShortDescriptionUntouched(t *testing.T) {
	text, _ := BookDetails(model.VolumeRecord{Title: "Dune", Authors: []string{"Frank Herbert"}, Description: "Spice."})

	assert.True(t, strings.HasSuffix(text, "\n\nSpice."))
}
