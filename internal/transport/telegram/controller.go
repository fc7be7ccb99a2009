package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"book_catalog_tgbot/config"
	"book_catalog_tgbot/data/session"
	"book_catalog_tgbot/internal/converter/telebotConverter"
	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/model/tg/tgCallback.go"
	"book_catalog_tgbot/internal/viewstate"
	"book_catalog_tgbot/utils"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

var errSessionExpired = errors.New("chat session expired")

type Session interface {
	GetSession(ctx context.Context, chatID int64) (model.Session, error)
	SetSession(ctx context.Context, chatID int64, session model.Session) error
	DeleteSession(ctx context.Context, chatID int64) error
}

// chatBrowser is the catalog of one chat together with the bot API used to redraw it.
type chatBrowser struct {
	browser *viewstate.Browser
	api     tele.API
	// serializes edits of the chat message
	renderMu sync.Mutex
}

type Controller struct {
	cfg        *config.Config
	session    Session
	loader     viewstate.Loader
	categories model.Categories

	mu       sync.Mutex
	browsers map[int64]*chatBrowser
}

func NewController(cfg *config.Config, loader viewstate.Loader, session Session) *Controller {
	return &Controller{
		cfg:        cfg,
		session:    session,
		loader:     loader,
		categories: model.NewCategories(cfg.Catalog.Categories),
		browsers:   make(map[int64]*chatBrowser),
	}
}

func (ctrl *Controller) sendAutoDeleteMsg(c tele.Context, text string) error {
	msg, err := c.Bot().Send(c.Recipient(), text)
	if err != nil {
		return err
	}

	time.AfterFunc(5*time.Second, func() {
		c.Bot().Delete(msg)
	})
	return nil
}

func (ctrl *Controller) respond(c tele.Context, text string) error {
	if c.Callback() == nil {
		return ctrl.sendAutoDeleteMsg(c, text)
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

func (ctrl *Controller) Help(c tele.Context) error {
	return c.Reply(helpMsg)
}

// Start opens a new catalog message for the chat and loads the default category.
// A catalog already open in the chat is closed.
func (ctrl *Controller) Start(c tele.Context) error {
	op := "Controller.Start"
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	chatID := c.Chat().ID

	ctrl.closeChat(chatID)

	defaultCategory := model.Category(ctrl.cfg.Catalog.DefaultCategory)
	loading, _ := viewstate.NewState(defaultCategory).SelectCategory(defaultCategory)
	text, markup := telebotConverter.CatalogView(loading, ctrl.categories, 0, ctrl.cfg.BooksPerPage)

	msg, err := c.Bot().Send(c.Recipient(), welcomeMsg+"\n\n"+text, markup)
	if err != nil {
		slog.Error("can't send catalog message", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = ctrl.session.SetSession(ctx, chatID, model.Session{MsgID: msg.ID})
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.sendAutoDeleteMsg(c, internalErrMsg)
	}

	cb := &chatBrowser{api: c.Bot()}
	cb.browser = viewstate.NewBrowser(ctrl.loader, ctrl.categories, defaultCategory, func(st viewstate.State) {
		ctrl.render(ctx, chatID, cb, st)
	})

	ctrl.mu.Lock()
	ctrl.browsers[chatID] = cb
	ctrl.mu.Unlock()

	if err = cb.browser.Start(ctx); err != nil {
		slog.Error("can't start browser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.sendAutoDeleteMsg(c, internalErrMsg)
	}

	slog.Info("catalog opened", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID), slog.Int("msgID", msg.ID))
	return nil
}

func (ctrl *Controller) SelectCategory(c tele.Context) error {
	op := "Controller.SelectCategory"
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	cb, err := ctrl.chatFor(ctx, c)
	if err != nil {
		return ctrl.handleChatErr(c, err)
	}

	category := model.Category(callbackPayload(c, tgCallback.Category))
	err = cb.browser.SelectCategory(category)
	if err != nil {
		if errors.Is(err, viewstate.ErrUnknownCategory) {
			slog.Warn("unknown category", slog.String("rqID", rqID), slog.String("op", op), slog.String("category", string(category)))
			return ctrl.respond(c, unknownCategoryMsg)
		}
		slog.Error("got error from browser.SelectCategory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.respond(c, internalErrMsg)
	}

	return c.Respond()
}

func (ctrl *Controller) ToBook(c tele.Context) error {
	op := "Controller.ToBook"
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	cb, err := ctrl.chatFor(ctx, c)
	if err != nil {
		return ctrl.handleChatErr(c, err)
	}

	payload := callbackPayload(c, tgCallback.ToBook)
	seq, sectionIdx, itemIdx, err := parseBookRef(payload)
	if err != nil {
		slog.Error(
			"error while parsing book reference from callback",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("payload", payload),
		)
		return ctrl.respond(c, internalErrMsg)
	}

	st := cb.browser.State()
	if seq != st.Seq {
		slog.Debug("book reference from an outdated list", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("seq", seq), slog.Uint64("currentSeq", st.Seq))
		return ctrl.respond(c, listOutdatedMsg)
	}

	book, ok := st.Book(sectionIdx, itemIdx)
	if !ok {
		return ctrl.respond(c, listOutdatedMsg)
	}

	if err = cb.browser.SelectBook(seq, book); err != nil {
		slog.Error("got error from browser.SelectBook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.respond(c, internalErrMsg)
	}

	return c.Respond()
}

func (ctrl *Controller) BackToList(c tele.Context) error {
	op := "Controller.BackToList"
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	cb, err := ctrl.chatFor(ctx, c)
	if err != nil {
		return ctrl.handleChatErr(c, err)
	}

	if err = cb.browser.ClearSelection(); err != nil {
		slog.Error("got error from browser.ClearSelection", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.respond(c, internalErrMsg)
	}

	return c.Respond()
}

// ToListPage scrolls the rendered list. The browser state is not changed.
func (ctrl *Controller) ToListPage(c tele.Context) error {
	op := "Controller.ToListPage"
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	chatID := c.Chat().ID

	cb, err := ctrl.chatFor(ctx, c)
	if err != nil {
		return ctrl.handleChatErr(c, err)
	}

	pageStr := callbackPayload(c, tgCallback.ToListPage)
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		slog.Error(
			"error while converting page from callback",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("pageStr", pageStr),
		)
		return ctrl.respond(c, internalErrMsg)
	}

	cb.renderMu.Lock()
	defer cb.renderMu.Unlock()

	chatSession, err := ctrl.session.GetSession(ctx, chatID)
	if err != nil {
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.respond(c, internalErrMsg)
	}

	st := cb.browser.State()
	chatSession.ListPage = telebotConverter.ClampListPage(st.Sections, page, ctrl.cfg.BooksPerPage)
	if err = ctrl.session.SetSession(ctx, chatID, chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return ctrl.respond(c, internalErrMsg)
	}

	ctrl.edit(ctx, chatID, cb, chatSession, st)
	return c.Respond()
}

// Close stops every open catalog.
func (ctrl *Controller) Close() {
	ctrl.mu.Lock()
	browsers := ctrl.browsers
	ctrl.browsers = make(map[int64]*chatBrowser)
	ctrl.mu.Unlock()

	for _, cb := range browsers {
		cb.browser.Close()
	}
}

func (ctrl *Controller) closeChat(chatID int64) {
	ctrl.mu.Lock()
	cb, ok := ctrl.browsers[chatID]
	delete(ctrl.browsers, chatID)
	ctrl.mu.Unlock()

	if ok {
		cb.browser.Close()
	}
}

// dropChat closes cb and forgets it unless the chat has opened another catalog since.
func (ctrl *Controller) dropChat(chatID int64, cb *chatBrowser) {
	ctrl.mu.Lock()
	if cur, ok := ctrl.browsers[chatID]; ok && cur == cb {
		delete(ctrl.browsers, chatID)
	}
	ctrl.mu.Unlock()

	cb.browser.Close()
}

// SweepExpired closes the catalogs whose chat session has expired and returns how many
// were closed.
func (ctrl *Controller) SweepExpired(ctx context.Context) int {
	op := "Controller.SweepExpired"
	rqID := utils.GetRequestIDFromCtx(ctx)

	ctrl.mu.Lock()
	open := make(map[int64]*chatBrowser, len(ctrl.browsers))
	for chatID, cb := range ctrl.browsers {
		open[chatID] = cb
	}
	ctrl.mu.Unlock()

	closed := 0
	for chatID, cb := range open {
		_, err := ctrl.session.GetSession(ctx, chatID)
		if err == nil {
			continue
		}
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			continue
		}
		ctrl.dropChat(chatID, cb)
		closed++
	}

	if closed > 0 {
		slog.Info("expired catalogs closed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("closed", closed))
	}
	return closed
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (ctrl *Controller) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ctrl.SweepExpired(utils.ContextWithRqID(ctx, uuid.NewString()))
		}
	}
}

// chatFor returns the open catalog of the chat. Catalogs whose session expired are closed.
func (ctrl *Controller) chatFor(ctx context.Context, c tele.Context) (*chatBrowser, error) {
	op := "Controller.chatFor"
	rqID := utils.GetRequestIDFromCtx(ctx)
	chatID := c.Chat().ID

	ctrl.mu.Lock()
	cb, ok := ctrl.browsers[chatID]
	ctrl.mu.Unlock()
	if !ok {
		return nil, errSessionExpired
	}

	chatSession, err := ctrl.session.GetSession(ctx, chatID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			ctrl.dropChat(chatID, cb)
			return nil, errSessionExpired
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if msg := c.Message(); c.Callback() != nil && msg != nil && msg.ID != chatSession.MsgID {
		return nil, errSessionExpired
	}

	return cb, nil
}

func (ctrl *Controller) handleChatErr(c tele.Context, err error) error {
	if errors.Is(err, errSessionExpired) {
		return ctrl.respond(c, sessionExpiredMsg)
	}
	return ctrl.respond(c, internalErrMsg)
}

// render is the browser's change callback. A new fetch cycle rewinds the list to its first page.
func (ctrl *Controller) render(ctx context.Context, chatID int64, cb *chatBrowser, st viewstate.State) {
	op := "Controller.render"
	rqID := utils.GetRequestIDFromCtx(ctx)

	cb.renderMu.Lock()
	defer cb.renderMu.Unlock()

	chatSession, err := ctrl.session.GetSession(ctx, chatID)
	if err != nil {
		slog.Warn("can't render catalog without session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, session.ErrNotFound) {
			// render runs on the browser loop, which Close waits for
			go ctrl.dropChat(chatID, cb)
		}
		return
	}

	if st.Phase == viewstate.Loading && chatSession.ListPage != 0 {
		chatSession.ListPage = 0
		if err = ctrl.session.SetSession(ctx, chatID, chatSession); err != nil {
			slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	ctrl.edit(ctx, chatID, cb, chatSession, st)
}

func (ctrl *Controller) edit(ctx context.Context, chatID int64, cb *chatBrowser, chatSession model.Session, st viewstate.State) {
	op := "Controller.edit"
	rqID := utils.GetRequestIDFromCtx(ctx)

	text, markup := telebotConverter.CatalogView(st, ctrl.categories, chatSession.ListPage, ctrl.cfg.BooksPerPage)
	msg := tele.StoredMessage{MessageID: strconv.Itoa(chatSession.MsgID), ChatID: chatID}

	if _, err := cb.api.Edit(msg, text, markup); err != nil {
		slog.Warn(
			"can't edit catalog message",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("phase", st.Phase.String()),
		)
	}
}

func callbackPayload(c tele.Context, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(c.Callback().Data, "\f"), prefix)
}

// parseBookRef parses "<seq>:<section>:<item>".
func parseBookRef(payload string) (seq uint64, section, item int, err error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed book reference %q", payload)
	}

	if seq, err = strconv.ParseUint(parts[0], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("parse seq: %w", err)
	}
	if section, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("parse section: %w", err)
	}
	if item, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("parse item: %w", err)
	}

	return seq, section, item, nil
}
