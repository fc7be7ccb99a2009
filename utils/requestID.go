package utils

import (
	"context"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

type ctxKey string

const requestIDKey ctxKey = "rqID"

// CreateCtxWithRqID returns a context carrying a fresh request id. The id is also
// stored in the telebot context so that middleware and handlers log the same value.
func CreateCtxWithRqID(c tele.Context) context.Context {
	rqID, ok := c.Get(string(requestIDKey)).(string)
	if !ok || rqID == "" {
		rqID = uuid.NewString()
		c.Set(string(requestIDKey), rqID)
	}
	return ContextWithRqID(context.Background(), rqID)
}

func ContextWithRqID(ctx context.Context, rqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, rqID)
}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, _ := ctx.Value(requestIDKey).(string)
	return rqID
}
