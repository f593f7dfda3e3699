package gateway

import (
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRateLimiter(t *testing.T) {
	Convey("Given a bucket of two tokens", t, func() {
		rl := NewRateLimiter(2, time.Hour)

		Convey("The burst passes and the next request is limited", func() {
			So(rl.Limit(), ShouldBeFalse)
			So(rl.Limit(), ShouldBeFalse)
			So(rl.Limit(), ShouldBeTrue)
			So(rl.Tokens(), ShouldEqual, 0)
		})
	})

	Convey("Given a fast refill", t, func() {
		rl := NewRateLimiter(1, 50*time.Millisecond)

		Convey("Tokens come back over time", func() {
			So(rl.Limit(), ShouldBeFalse)
			So(rl.Limit(), ShouldBeTrue)

			time.Sleep(120 * time.Millisecond)
			So(rl.Limit(), ShouldBeFalse)
		})

		Convey("The bucket never overfills", func() {
			time.Sleep(150 * time.Millisecond)
			So(rl.Tokens(), ShouldEqual, 1)
		})
	})

	Convey("A zero refill rate disables limiting", t, func() {
		rl := NewRateLimiter(1, 0)
		for i := 0; i < 10; i++ {
			So(rl.Limit(), ShouldBeFalse)
		}
		So(rl.Tokens(), ShouldEqual, math.MaxInt)
	})

	Convey("A zero burst disables limiting", t, func() {
		rl := NewRateLimiter(0, time.Millisecond)
		for i := 0; i < 10; i++ {
			So(rl.Limit(), ShouldBeFalse)
		}
	})

	Convey("A nil limiter never limits", t, func() {
		var rl *RateLimiter
		So(rl.Limit(), ShouldBeFalse)
	})
}
