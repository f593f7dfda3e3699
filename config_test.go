package qgate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	Convey("Given no file and a clean environment", t, func() {
		t.Setenv(EndpointEnv, "")

		cfg, err := LoadConfig("")
		So(err, ShouldBeNil)

		Convey("Defaults apply and execution stays local", func() {
			So(cfg.Remote(), ShouldBeFalse)
			So(cfg.MaxQubits, ShouldEqual, DefaultMaxQubits)
			So(cfg.Gateway.ChunkSize, ShouldEqual, 256)
			So(cfg.Gateway.CacheTTL, ShouldEqual, 24*time.Hour)
			So(cfg.MaxShots, ShouldEqual, DefaultMaxShots)
			So(cfg.Gateway.MaxShots, ShouldEqual, DefaultMaxShots)
		})
	})

	Convey("Given the gateway host variable", t, func() {
		t.Setenv(EndpointEnv, "  qpu.internal:50051 ")
		t.Setenv("QGATE_WORKERS", "8")
		t.Setenv("QGATE_GATEWAY_CACHE_TTL", "1h")

		cfg, err := LoadConfig("")
		So(err, ShouldBeNil)

		So(cfg.Remote(), ShouldBeTrue)
		So(cfg.Endpoint, ShouldEqual, "qpu.internal:50051")
		So(cfg.Workers, ShouldEqual, 8)
		So(cfg.Gateway.CacheTTL, ShouldEqual, time.Hour)
	})

	Convey("Given a config file", t, func() {
		t.Setenv(EndpointEnv, "")

		path := filepath.Join(t.TempDir(), "qgate.yaml")
		err := os.WriteFile(path, []byte("max_qubits: 12\nseed: 42\ngateway:\n  listen_addr: \":6000\"\n"), 0o600)
		So(err, ShouldBeNil)

		cfg, err := LoadConfig(path)
		So(err, ShouldBeNil)

		So(cfg.MaxQubits, ShouldEqual, 12)
		So(cfg.Seed, ShouldEqual, uint64(42))
		So(cfg.Gateway.ListenAddr, ShouldEqual, ":6000")
		So(cfg.Gateway.MetricsAddr, ShouldEqual, ":9090")
	})

	Convey("A missing file is an error", t, func() {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		So(err, ShouldNotBeNil)
	})
}
