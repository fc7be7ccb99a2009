package config

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"book_catalog_tgbot/internal/model/tg/tgCallback.go"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env               string        `env:"ENV" envDefault:"local"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	ProxyUrl          string        `env:"PROXY_URL" envDefault:""`
	BooksPerPage      int           `env:"BOOKS_PER_PAGE" envDefault:"10"`
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"30m"`
	Telegram          Telegram
	Volumes           Volumes
	Catalog           Catalog
	Redis             Redis
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type Volumes struct {
	BaseUrl        string        `env:"VOLUMES_BASE_URL" envDefault:"https://www.googleapis.com"`
	SearchPath     string        `env:"VOLUMES_SEARCH_PATH" envDefault:"/books/v1/volumes"`
	ApiKey         string        `env:"VOLUMES_API_KEY" envDefault:""`
	UserAgent      string        `env:"VOLUMES_USER_AGENT" envDefault:"book-catalog-tgbot/1.0"`
	PageSize       int           `env:"VOLUMES_PAGE_SIZE" envDefault:"40"`
	PageLimit      int           `env:"VOLUMES_PAGE_LIMIT" envDefault:"20"`
	ResultCeiling  int           `env:"VOLUMES_RESULT_CEILING" envDefault:"800"`
	MinResults     int           `env:"VOLUMES_MIN_RESULTS" envDefault:"10"`
	RequestTimeout time.Duration `env:"VOLUMES_REQUEST_TIMEOUT" envDefault:"15s"`
	RPS            float64       `env:"VOLUMES_RPS" envDefault:"0"`
}

type Catalog struct {
	Categories      []string `env:"CATALOG_CATEGORIES" envSeparator:"," envDefault:"Fiction,Mystery,Fantasy,Romance,History,Science"`
	DefaultCategory string   `env:"CATALOG_DEFAULT_CATEGORY" envDefault:"Fiction"`
}

// Redis is optional: an empty host keeps chat sessions in memory.
type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:""`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	return cfg
}

func (c *Config) Validate() error {
	if len(c.Catalog.Categories) == 0 {
		return errors.New("no catalog categories configured")
	}
	for _, cat := range c.Catalog.Categories {
		if cat == "" {
			return errors.New("catalog categories must not be empty")
		}
		if data := tgCallback.Data(tgCallback.Category + cat); len(data) > tgCallback.MaxDataLen {
			return fmt.Errorf("category %q is too long: callback data takes %d of %d bytes", cat, len(data), tgCallback.MaxDataLen)
		}
	}
	if !slices.Contains(c.Catalog.Categories, c.Catalog.DefaultCategory) {
		return fmt.Errorf("default category %q is not one of %v", c.Catalog.DefaultCategory, c.Catalog.Categories)
	}
	if c.Volumes.PageSize <= 0 || c.Volumes.PageLimit <= 0 || c.Volumes.ResultCeiling <= 0 {
		return errors.New("volumes page size, page limit and result ceiling must be positive")
	}
	if c.Volumes.MinResults < 0 {
		return errors.New("volumes min results must not be negative")
	}
	if c.BooksPerPage <= 0 {
		return errors.New("books per page must be positive")
	}
	return nil
}
