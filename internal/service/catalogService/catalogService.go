package catalogService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"book_catalog_tgbot/config"
	"book_catalog_tgbot/internal/aggregator"
	"book_catalog_tgbot/internal/model"
	"book_catalog_tgbot/internal/service"
	"book_catalog_tgbot/utils"
)

type VolumesFetcher interface {
	Fetch(ctx context.Context, category model.Category, pageLimit, pageSize int) ([]model.VolumeRecord, error)
}

type SectionsAggregator interface {
	Aggregate(raw []model.VolumeRecord, minResults int) ([]model.Section, error)
}

type CatalogService struct {
	cfg        *config.Config
	fetcher    VolumesFetcher
	aggregator SectionsAggregator
}

func New(cfg *config.Config, fetcher VolumesFetcher, aggregator SectionsAggregator) *CatalogService {
	return &CatalogService{
		cfg:        cfg,
		fetcher:    fetcher,
		aggregator: aggregator,
	}
}

// Load runs one fetch cycle for the category: all pages are fetched first, then filtered
// and grouped. Fetch failures wrap service.ErrUnavailable, a result below the configured
// threshold wraps service.ErrNotEnoughResults.
func (s *CatalogService) Load(ctx context.Context, category model.Category) ([]model.Section, error) {
	op := "CatalogService.Load"
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := s.fetcher.Fetch(ctx, category, s.cfg.Volumes.PageLimit, s.cfg.Volumes.PageSize)
	if err != nil {
		slog.Error(
			"got error from fetcher.Fetch",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("category", string(category)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", service.ErrUnavailable, err)
	}

	sections, err := s.aggregator.Aggregate(raw, s.cfg.Volumes.MinResults)
	if err != nil {
		if errors.Is(err, aggregator.ErrInsufficientResults) {
			slog.Warn(
				"not enough qualifying volumes",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("category", string(category)),
				slog.Int("raw", len(raw)),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("%w: %w", service.ErrNotEnoughResults, err)
		}
		return nil, err
	}

	slog.Info(
		"catalog loaded",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("category", string(category)),
		slog.Int("raw", len(raw)),
		slog.Int("sections", len(sections)),
		slog.Int("items", model.CountItems(sections)),
	)

	return sections, nil
}
