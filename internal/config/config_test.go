package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sky-flux/ebisu"
	"github.com/sky-flux/ebisu/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the engine defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.SkewThreshold, convey.ShouldEqual, ebisu.DefaultSkewThreshold)
			convey.So(cfg.Tolerance, convey.ShouldEqual, ebisu.DefaultTolerance)
			convey.So(cfg.MaxIterations, convey.ShouldEqual, ebisu.DefaultMaxIterations)
			convey.So(cfg.CacheEntries, convey.ShouldEqual, ebisu.DefaultCacheEntries)
			convey.So(cfg.Workers, convey.ShouldEqual, runtime.GOMAXPROCS(0))
			convey.So(cfg.DefaultHalflife, convey.ShouldEqual, 24)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then its engine config builds an engine", func() {
			e, err := ebisu.NewEngine(cfg.EngineConfig())
			convey.So(err, convey.ShouldBeNil)
			convey.So(e.Config().BracketWidth, convey.ShouldEqual, ebisu.DefaultBracketWidth)
		})
	})
}
