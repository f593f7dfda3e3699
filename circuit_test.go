package qgate

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuitBreaker(t *testing.T) {
	Convey("Given a circuit breaker", t, func() {
		cb := NewCircuitBreaker(3, 50*time.Millisecond, 2)

		So(cb.State(), ShouldEqual, CircuitClosed)
		So(cb.Allow(), ShouldBeTrue)

		Convey("A success resets the failure count", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			cb.RecordSuccess()
			cb.RecordFailure()
			cb.RecordFailure()

			So(cb.State(), ShouldEqual, CircuitClosed)
		})

		Convey("Consecutive failures open it", func() {
			for i := 0; i < 3; i++ {
				cb.RecordFailure()
			}

			So(cb.State(), ShouldEqual, CircuitOpen)
			So(cb.Allow(), ShouldBeFalse)

			Convey("After the reset timeout it lets probes through", func() {
				time.Sleep(80 * time.Millisecond)

				So(cb.Allow(), ShouldBeTrue)
				So(cb.State(), ShouldEqual, CircuitHalfOpen)

				Convey("Enough successful probes close it", func() {
					cb.RecordSuccess()
					So(cb.State(), ShouldEqual, CircuitHalfOpen)

					cb.RecordSuccess()
					So(cb.State(), ShouldEqual, CircuitClosed)
				})

				Convey("A failed probe opens it again", func() {
					cb.RecordFailure()
					So(cb.State(), ShouldEqual, CircuitOpen)
					So(cb.Allow(), ShouldBeFalse)
				})
			})
		})
	})

	Convey("States have names", t, func() {
		So(CircuitClosed.String(), ShouldEqual, "closed")
		So(CircuitOpen.String(), ShouldEqual, "open")
		So(CircuitHalfOpen.String(), ShouldEqual, "half-open")
	})
}
