package tgbot

import (
	"log/slog"
	"strings"

	"book_catalog_tgbot/config"
	"book_catalog_tgbot/internal/model/tg/tgCallback.go"
	"book_catalog_tgbot/internal/transport/telegram"
	customMW "book_catalog_tgbot/internal/transport/telegram/middleware"

	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	b.ctrl.Close()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	// commands
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Help)

	// callbacks
	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		callbackBtnText := strings.TrimPrefix(c.Callback().Data, "\f")

		switch {
		case callbackBtnText == tgCallback.BackToList:
			return b.ctrl.BackToList(c)
		case callbackBtnText == tgCallback.PageNumber:
			return c.Respond()
		case strings.HasPrefix(callbackBtnText, tgCallback.Category):
			return b.ctrl.SelectCategory(c)
		case strings.HasPrefix(callbackBtnText, tgCallback.ToBook):
			return b.ctrl.ToBook(c)
		case strings.HasPrefix(callbackBtnText, tgCallback.ToListPage):
			return b.ctrl.ToListPage(c)
		default:
			return c.Respond(&tele.CallbackResponse{Text: "unknown button"})
		}
	})
}
