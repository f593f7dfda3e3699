package qgate

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBind(t *testing.T) {
	Convey("Given parameter names", t, func() {
		params := []string{"theta[0]", "theta[1]"}

		Convey("Values bind by position", func() {
			b, err := Bind(params, []float64{0.5, 1.2})
			So(err, ShouldBeNil)
			So(b, ShouldResemble, Bindings{"theta[0]": 0.5, "theta[1]": 1.2})
		})

		Convey("A length mismatch binds nothing", func() {
			b, err := Bind(params, []float64{0.5})
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
			So(b, ShouldBeNil)
		})

		Convey("Repeated names are rejected", func() {
			_, err := Bind([]string{"a", "a"}, []float64{1, 2})
			So(errors.Is(err, ErrDuplicateParameter), ShouldBeTrue)
		})

		Convey("Empty lists bind to an empty mapping", func() {
			b, err := Bind(nil, nil)
			So(err, ShouldBeNil)
			So(b, ShouldBeEmpty)
		})
	})
}
