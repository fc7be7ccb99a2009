package tgCallback

// MaxDataLen is Telegram's limit for callback data in bytes. telebot prepends "\f" to
// the unique part of a button.
const MaxDataLen = 64

// Data returns the callback data telebot sends for a button with the given unique part.
func Data(unique string) string {
	return "\f" + unique
}

// Callback button prefixes
const (
	PageNumber string = "page_number"
	BackToList string = "back_to_list"

	// prefixes
	Category   string = "category:"
	ToBook     string = "to_book:"
	ToListPage string = "to_list_page:"
)
