package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ScoresIntervalMS, convey.ShouldEqual, 5_000)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1_024)
				convey.So(cfg.WSBroadcastBuffer, convey.ShouldEqual, 1_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("MATCHBOARD_ADDR", ":8080")
			t.Setenv("MATCHBOARD_SCORES_INTERVAL_MS", "2000")
			t.Setenv("MATCHBOARD_AUTO_ADD_CARDS", "true")
			t.Setenv("MATCHBOARD_STAT_KEYS", "ballPossession, cornerKicks")
			t.Setenv("MATCHBOARD_CORS_ORIGINS", "http://localhost:3000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoresIntervalMS, convey.ShouldEqual, 2000)
				convey.So(cfg.AutoAddCards, convey.ShouldBeTrue)
				convey.So(cfg.StatKeys, convey.ShouldResemble, []string{"ballPossession", "cornerKicks"})
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeFile(t, "config.yaml", `
addr: ":9090"
stats_interval_ms: 60000
card_batch_size: 0
stat_keys:
  - fouls
`)
			t.Setenv("MATCHBOARD_CONFIG", path)
			t.Setenv("MATCHBOARD_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StatsIntervalMS, convey.ShouldEqual, 60000)
				convey.So(cfg.CardBatchSize, convey.ShouldEqual, 0)
				convey.So(cfg.StatKeys, convey.ShouldResemble, []string{"fouls"})
				convey.So(cfg.ScoresIntervalMS, convey.ShouldEqual, 5_000)
			})
		})

		convey.Convey("When a .env file is present", func() {
			path := writeFile(t, "test.env", "MATCHBOARD_API_KEY=secret\nMATCHBOARD_UPSTREAM_HOST=relay.example.com\n")
			t.Setenv("MATCHBOARD_ENV_FILE", path)
			t.Cleanup(func() {
				_ = os.Unsetenv("MATCHBOARD_API_KEY")
				_ = os.Unsetenv("MATCHBOARD_UPSTREAM_HOST")
			})

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.UpstreamHost, convey.ShouldEqual, "relay.example.com")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("MATCHBOARD_CONFIG", writeFile(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("MATCHBOARD_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("MATCHBOARD_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When the widget template has no placeholder", func() {
			t.Setenv("MATCHBOARD_WIDGET_URL", "https://widgets.example.com/embed")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("MATCHBOARD_WORKER_COUNT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the worker count is zero", func() {
			t.Setenv("MATCHBOARD_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "MATCHBOARD_") {
			_ = os.Unsetenv(key)
		}
	}
	t.Setenv("MATCHBOARD_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
