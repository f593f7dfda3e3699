package qgate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given metrics on a registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		Convey("Executions are counted by mode and result", func() {
			m.recordExecution(ModeLocal, time.Now(), 10, 0.3, nil)
			m.recordExecution(ModeLocal, time.Now(), 10, 0, newError(ErrTransport, "x"))

			So(testutil.ToFloat64(m.executions.WithLabelValues(ModeLocal, "ok")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.executions.WithLabelValues(ModeLocal, "error")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.shots.WithLabelValues(ModeLocal)), ShouldEqual, 10)

			snapshot := m.ExportMetrics()
			So(snapshot["executions"], ShouldEqual, int64(2))
			So(snapshot["failures"], ShouldEqual, int64(1))
			So(snapshot["last_expectation"], ShouldEqual, 0.3)
		})

		Convey("The collectors are exposed", func() {
			m.recordBreakerReject()

			err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP qgate_circuit_breaker_rejections_total Jobs refused because their circuit breaker was open.
# TYPE qgate_circuit_breaker_rejections_total counter
qgate_circuit_breaker_rejections_total 1
`), "qgate_circuit_breaker_rejections_total")
			So(err, ShouldBeNil)
		})
	})

	Convey("A nil sink ignores records", t, func() {
		var m *Metrics
		So(func() {
			m.recordExecution(ModeLocal, time.Now(), 1, 0, nil)
			m.recordJob(nil)
			m.recordBreakerReject()
			m.recordSchedulingFailure()
		}, ShouldNotPanic)
	})

	Convey("A dispatcher records through its sink", t, func() {
		m := NewMetrics(nil)
		stub, _ := allOnes()
		d, err := NewDispatcher(nil, WithExecutor(stub), WithMetrics(m))
		So(err, ShouldBeNil)
		So(d.Metrics(), ShouldEqual, m)

		prog, params, _ := BuildAnsatz(1)
		_, err = d.Execute(context.Background(), prog, params, []float64{0}, 7)
		So(err, ShouldBeNil)

		So(testutil.ToFloat64(m.shots.WithLabelValues(ModeCustom)), ShouldEqual, 7)
	})
}
