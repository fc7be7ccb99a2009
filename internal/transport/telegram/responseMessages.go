package telegram

const (
	internalErrMsg     string = "something went wrong..."
	sessionExpiredMsg  string = "this catalog has expired, send /start to open a new one"
	listOutdatedMsg    string = "this list is outdated"
	unknownCategoryMsg string = "unknown category"
	welcomeMsg         string = "Welcome! Pick a category to browse books grouped by author."
	helpMsg            string = "/start opens the catalog. Tap a category to load its books, tap a number to see the details of a book and use the page buttons to scroll the list.\n\nOnly books with a publisher and a description are listed. A category needs at least a handful of such books to be shown."
)
