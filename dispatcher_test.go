package qgate

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func allOnes() (Executor, *int) {
	calls := 0
	return ExecutorFunc(func(ctx context.Context, job Job) ([]Outcome, error) {
		calls++
		out := make([]Outcome, job.Shots)
		for i := range out {
			out[i] = "1"
		}
		return out, nil
	}), &calls
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher over an executor that always reads one", t, func() {
		stub, calls := allOnes()
		metrics := NewMetrics(nil)

		d, err := NewDispatcher(nil, WithExecutor(stub), WithMetrics(metrics))
		So(err, ShouldBeNil)
		So(d.Mode(), ShouldEqual, ModeCustom)

		prog, params, err := BuildQAOA(1, 2)
		So(err, ShouldBeNil)

		Convey("A hundred shots give a certain expectation", func() {
			result, err := d.Execute(context.Background(), prog, params, []float64{0.5, 1.2}, 100)

			So(err, ShouldBeNil)
			So(result.Histogram, ShouldResemble, Histogram{"1": 100})
			So(result.Expectation, ShouldEqual, 1.0)
			So(metrics.ExportMetrics()["shots"], ShouldEqual, int64(100))
		})

		Convey("Arity mismatches never reach the executor", func() {
			_, err := d.Execute(context.Background(), prog, params, []float64{0.5}, 100)

			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
			So(*calls, ShouldEqual, 0)
			So(metrics.ExportMetrics()["failures"], ShouldEqual, int64(1))
		})

		Convey("Non-positive shots are rejected", func() {
			_, err := d.Execute(context.Background(), prog, params, []float64{0.5, 1.2}, 0)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("A cancelled context is not dispatched", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := d.Execute(ctx, prog, params, []float64{0.5, 1.2}, 10)
			So(errors.Is(err, ErrCancelled), ShouldBeTrue)
			So(*calls, ShouldEqual, 0)
		})

		Convey("Executor failures pass through unchanged", func() {
			failing := ExecutorFunc(func(ctx context.Context, job Job) ([]Outcome, error) {
				return nil, newError(ErrTransport, "gateway down")
			})
			d, err := NewDispatcher(nil, WithExecutor(failing))
			So(err, ShouldBeNil)

			_, err = d.Execute(context.Background(), prog, params, []float64{0.5, 1.2}, 10)
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
		})
	})

	Convey("Given configs for each mode", t, func() {
		Convey("No endpoint selects the local simulator", func() {
			d, err := NewDispatcher(NewConfig())
			So(err, ShouldBeNil)
			So(d.Mode(), ShouldEqual, ModeLocal)
			So(d.Close(), ShouldBeNil)
		})

		Convey("An endpoint selects the remote gateway", func() {
			cfg := NewConfig()
			cfg.Endpoint = "localhost:50051"

			d, err := NewDispatcher(cfg)
			So(err, ShouldBeNil)
			So(d.Mode(), ShouldEqual, ModeRemote)
			So(d.Close(), ShouldBeNil)
		})

		Convey("A malformed endpoint fails construction", func() {
			cfg := NewConfig()
			cfg.Endpoint = "not an endpoint"

			_, err := NewDispatcher(cfg)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})
	})

	Convey("Local and custom executors produce the same result shape", t, func() {
		cfg := NewConfig()
		cfg.Seed = 5
		local, err := NewDispatcher(cfg)
		So(err, ShouldBeNil)

		stub, _ := allOnes()
		custom, err := NewDispatcher(cfg, WithExecutor(stub))
		So(err, ShouldBeNil)

		prog, params, _ := BuildAnsatz(1)

		a, err := local.Execute(context.Background(), prog, params, []float64{math.Pi}, 50)
		So(err, ShouldBeNil)
		b, err := custom.Execute(context.Background(), prog, params, []float64{math.Pi}, 50)
		So(err, ShouldBeNil)

		So(a, ShouldResemble, b)
	})
}
