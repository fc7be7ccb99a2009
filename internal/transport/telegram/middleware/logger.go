package middleware

import (
	"log/slog"
	"time"

	"book_catalog_tgbot/utils"

	tele "gopkg.in/telebot.v4"
)

// Logger logs every update with the request id handlers will reuse.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := utils.CreateCtxWithRqID(c)
			rqID := utils.GetRequestIDFromCtx(ctx)
			start := time.Now()

			attrs := []any{slog.String("rqID", rqID)}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Data))
			} else if msg := c.Message(); msg != nil {
				attrs = append(attrs, slog.String("text", msg.Text))
			}
			slog.Info("update received", attrs...)

			err := next(c)
			if err != nil {
				slog.Error("handler failed", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Duration("took", time.Since(start)))
				return err
			}

			slog.Debug("update handled", slog.String("rqID", rqID), slog.Duration("took", time.Since(start)))
			return nil
		}
	}
}
