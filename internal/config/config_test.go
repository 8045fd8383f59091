package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/frisk/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the configuration loader", t, func() {
		ctx := context.Background()

		Convey("When no overrides are present", func() {
			cfg, err := config.Load(ctx)

			Convey("Then defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5000")
				So(cfg.DatabasePath, ShouldEqual, "predictions.db")
				So(cfg.ModelPath, ShouldBeEmpty)
				So(cfg.RecordCacheSize, ShouldEqual, 1024)
				So(cfg.BusyTimeoutMS, ShouldEqual, 5000)
				So(cfg.MaxBodyBytes, ShouldEqual, int64(1<<20))
			})
		})

		Convey("When environment variables override defaults", func() {
			t.Setenv("FRISK_ADDR", ":8080")
			t.Setenv("FRISK_DATABASE_PATH", "/tmp/ledger.db")
			t.Setenv("FRISK_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			Convey("Then the env values should win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.DatabasePath, ShouldEqual, "/tmp/ledger.db")
				So(cfg.LogLevel, ShouldEqual, "debug")
			})
		})

		Convey("When a config file is layered under env vars", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			content := "addr: \":7070\"\nmodel_path: \"model.json\"\n"
			So(os.WriteFile(path, []byte(content), 0600), ShouldBeNil)
			t.Setenv("FRISK_CONFIG", path)
			t.Setenv("FRISK_ADDR", ":9090")

			cfg, err := config.Load(ctx)

			Convey("Then env should beat the file, and the file should beat defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.ModelPath, ShouldEqual, "model.json")
			})
		})

		Convey("When the config file does not exist", func() {
			t.Setenv("FRISK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When a required field is emptied", func() {
			t.Setenv("FRISK_CONFIG", "")
			t.Setenv("FRISK_ADDR", "")

			_, err := config.Load(ctx)

			So(err, ShouldNotBeNil)
		})
	})
}
