package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pmwiki/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatabaseURL, convey.ShouldEqual, "")
			convey.So(cfg.CompareMaxItems, convey.ShouldEqual, 3)
			convey.So(cfg.RevalidateInterval, convey.ShouldEqual, time.Hour)
			convey.So(cfg.SearchLimit, convey.ShouldEqual, 30)
			convey.So(cfg.RecommendationLimit, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := map[string]func(*config.Config){
			"addr":       func(c *config.Config) { c.Addr = "" },
			"log level":  func(c *config.Config) { c.LogLevel = "verbose" },
			"log format": func(c *config.Config) { c.LogFormat = "xml" },
			"compare":    func(c *config.Config) { c.CompareMaxItems = 0 },
			"sessions":   func(c *config.Config) { c.CompareMaxSessions = -1 },
			"ttl":        func(c *config.Config) { c.CompareSessionTTL = -time.Second },
			"revalidate": func(c *config.Config) { c.RevalidateInterval = 0 },
			"search":     func(c *config.Config) { c.SearchLimit = 0 },
			"ranking":    func(c *config.Config) { c.MaxRankingLimit = 0 },
			"recommend":  func(c *config.Config) { c.RecommendationLimit = 0 },
			"base url":   func(c *config.Config) { c.SiteBaseURL = "pmwiki.kr" },
			"empty base": func(c *config.Config) { c.SiteBaseURL = "" },
		}

		convey.Convey("Then each is rejected with ErrInvalidConfig", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
