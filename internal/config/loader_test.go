package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/pmwiki/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ContentGlob, convey.ShouldEqual, "content/**/*.yaml")
				convey.So(cfg.CompareSessionTTL, convey.ShouldEqual, 24*time.Hour)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PMWIKI_ADDR", ":8080")
			_ = os.Setenv("PMWIKI_DATABASE_URL", "postgres://pm:pm@localhost:5432/pmwiki")
			_ = os.Setenv("PMWIKI_COMPARE_MAX_ITEMS", "4")
			_ = os.Setenv("PMWIKI_COMPARE_SESSION_TTL", "30m")
			_ = os.Setenv("PMWIKI_SEED_ON_START", "false")
			_ = os.Setenv("PMWIKI_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://pm:pm@localhost:5432/pmwiki")
				convey.So(cfg.CompareMaxItems, convey.ShouldEqual, 4)
				convey.So(cfg.CompareSessionTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.SeedOnStart, convey.ShouldBeFalse)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# local development
addr: ":9090"
site_base_url: "https://staging.pmwiki.kr"
revalidate_interval: 5m
search_limit: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PMWIKI_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SiteBaseURL, convey.ShouldEqual, "https://staging.pmwiki.kr")
				convey.So(cfg.RevalidateInterval, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.SearchLimit, convey.ShouldEqual, 20)
				convey.So(cfg.CompareMaxItems, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nsearch_limit: 20\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PMWIKI_CONFIG", tmpFile)
			_ = os.Setenv("PMWIKI_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should take precedence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.SearchLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PMWIKI_CONFIG", "/nonexistent/pmwiki.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PMWIKI_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PMWIKI_CONFIG",
		"PMWIKI_ADDR",
		"PMWIKI_DATABASE_URL",
		"PMWIKI_COMPARE_MAX_ITEMS",
		"PMWIKI_COMPARE_SESSION_TTL",
		"PMWIKI_SEED_ON_START",
		"PMWIKI_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pmwiki-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
