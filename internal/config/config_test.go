package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/lmduc2309/english-music-app/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.BarCount, convey.ShouldEqual, 20)
			convey.So(cfg.BarHeight, convey.ShouldEqual, 120)
			convey.So(cfg.FloorHeight, convey.ShouldEqual, 4)
			convey.So(cfg.ClampHeights, convey.ShouldBeTrue)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 10*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func()
		}{
			{"empty addr", func() { cfg.Addr = "" }},
			{"unknown log format", func() { cfg.LogFormat = "xml" }},
			{"zero queue", func() { cfg.QueueSize = 0 }},
			{"zero workers", func() { cfg.WorkerCount = 0 }},
			{"zero dedupe size", func() { cfg.DedupeSize = 0 }},
			{"zero max bar count", func() { cfg.MaxBarCount = 0 }},
			{"bar count over max", func() { cfg.BarCount = cfg.MaxBarCount + 1 }},
			{"zero bar height", func() { cfg.BarHeight = 0 }},
			{"negative floor", func() { cfg.FloorHeight = -1 }},
			{"zero max samples", func() { cfg.MaxSamples = 0 }},
			{"negative ttl", func() { cfg.SessionTTLSeconds = -5 }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				tc.mutate()
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
