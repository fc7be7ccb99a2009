package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RedisSession struct {
	redis      *redis.Client
	expiration time.Duration
}

func NewRedisSession(redisClient *redis.Client, expiration time.Duration) *RedisSession {
	return &RedisSession{redis: redisClient, expiration: expiration}
}

func (r *RedisSession) createSessionKey(chatID int64) string {
	return fmt.Sprintf("chatID:%d:session", chatID)
}

func (r *RedisSession) SetSession(ctx context.Context, chatID int64, session model.Session) error {
	op := "RedisSession.SetSession"
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetSession", slog.String("rqID", rqID), slog.String("op", op), slog.Any("session", session))

	sessionJson, err := json.Marshal(session)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: marshal session: %w", op, err)
	}

	err = r.redis.Set(ctx, r.createSessionKey(chatID), string(sessionJson), r.expiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisSession) GetSession(ctx context.Context, chatID int64) (model.Session, error) {
	op := "RedisSession.GetSession"
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := r.createSessionKey(chatID)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			slog.Debug("session not found in redis", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
			return model.Session{}, ErrNotFound
		}

		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return model.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	session := model.Session{}
	if err = json.Unmarshal([]byte(res), &session); err != nil {
		slog.Error(
			"can't unmarshall session",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Session{}, fmt.Errorf("%s: unmarshal session: %w", op, err)
	}

	return session, nil
}

func (r *RedisSession) DeleteSession(ctx context.Context, chatID int64) error {
	op := "RedisSession.DeleteSession"
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := r.redis.Del(ctx, r.createSessionKey(chatID)).Err(); err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
