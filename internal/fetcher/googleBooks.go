package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"book_catalog_tgbot/config"
	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/utils"

	"github.com/gocolly/colly/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type GoogleBooksFetcher struct {
	cfg     *config.Config
	limiter *rate.Limiter
}

func NewGoogleBooksFetcher(cfg *config.Config) *GoogleBooksFetcher {
	limit := rate.Inf
	if cfg.Volumes.RPS > 0 {
		limit = rate.Limit(cfg.Volumes.RPS)
	}
	return &GoogleBooksFetcher{cfg: cfg, limiter: rate.NewLimiter(limit, 1)}
}

func (f *GoogleBooksFetcher) getCollector(ctx context.Context) (*colly.Collector, error) {
	op := "GoogleBooksFetcher.getCollector"
	rqID := utils.GetRequestIDFromCtx(ctx)

	c := colly.NewCollector(colly.AllowURLRevisit())
	if f.cfg.Volumes.UserAgent != "" {
		c.UserAgent = f.cfg.Volumes.UserAgent
	}
	if f.cfg.Volumes.RequestTimeout > 0 {
		c.SetRequestTimeout(f.cfg.Volumes.RequestTimeout)
	}

	if f.cfg.ProxyUrl != "" {
		err := c.SetProxy(f.cfg.ProxyUrl)
		if err != nil {
			slog.Error(
				"Failed to set proxy",
				slog.String("op", op),
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
			)
			return nil, err
		}
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		slog.Debug("Visiting", slog.String("op", op), slog.String("rqID", rqID), slog.String("url", r.URL.String()))
	})

	return c, nil
}

// Fetch requests up to pageLimit pages of pageSize records for the category and returns
// them concatenated in API order. It stops early on an empty page or once the configured
// result ceiling is reached. Any failed page fails the whole call with ErrNetwork.
func (f *GoogleBooksFetcher) Fetch(ctx context.Context, category model.Category, pageLimit, pageSize int) ([]model.VolumeRecord, error) {
	op := "GoogleBooksFetcher.Fetch"
	rqID := utils.GetRequestIDFromCtx(ctx)

	if pageLimit <= 0 || pageSize <= 0 {
		return nil, ErrIncorrectPaging
	}

	ceiling := f.cfg.Volumes.ResultCeiling
	capacity := pageLimit * pageSize
	if ceiling > 0 && ceiling < capacity {
		capacity = ceiling
	}

	records := make([]model.VolumeRecord, 0, capacity)
	for page := 0; page < pageLimit; page++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}

		items, err := f.fetchPage(ctx, category, pageSize, page*pageSize)
		if err != nil {
			slog.Error(
				"error while fetching volumes page",
				slog.String("op", op),
				slog.String("rqID", rqID),
				slog.String("category", string(category)),
				slog.Int("page", page),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("%w: page %d: %w", ErrNetwork, page, err)
		}

		if len(items) == 0 {
			break
		}

		records = append(records, items...)

		if ceiling > 0 && len(records) >= ceiling {
			records = records[:ceiling]
			break
		}
	}

	slog.Info(
		"volumes fetched",
		slog.String("op", op),
		slog.String("rqID", rqID),
		slog.String("category", string(category)),
		slog.Int("count", len(records)),
	)

	return records, nil
}

func (f *GoogleBooksFetcher) fetchPage(ctx context.Context, category model.Category, pageSize, offset int) ([]model.VolumeRecord, error) {
	c, err := f.getCollector(ctx)
	if err != nil {
		return nil, err
	}

	var (
		payload   volumesResponse
		decodeErr error
		received  bool
	)

	c.OnResponse(func(r *colly.Response) {
		received = true
		decodeErr = json.Unmarshal(r.Body, &payload)
	})

	if err = c.Visit(f.searchURL(category, pageSize, offset)); err != nil {
		return nil, err
	}

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case !received:
		return nil, ErrEmptyResponse
	case decodeErr != nil:
		return nil, fmt.Errorf("malformed payload: %w", decodeErr)
	}

	return payload.records(), nil
}

func (f *GoogleBooksFetcher) searchURL(category model.Category, pageSize, offset int) string {
	params := url.Values{}
	params.Set("q", "subject:"+string(category))
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("startIndex", strconv.Itoa(offset))
	if f.cfg.Volumes.ApiKey != "" {
		params.Set("key", f.cfg.Volumes.ApiKey)
	}

	return f.cfg.Volumes.BaseUrl + f.cfg.Volumes.SearchPath + "?" + params.Encode()
}
