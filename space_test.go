package qgate

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func waiters(qs *QuantumSpace, id string) int {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	return len(qs.waiting[id])
}

func TestQuantumSpace(t *testing.T) {
	Convey("Given a quantum space", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		qs := newQuantumSpace(ctx, 10*time.Millisecond)

		Reset(func() {
			cancel()
			qs.wg.Wait()
		})

		Convey("A value stored first is handed to a later waiter", func() {
			qs.Store("k", "v", nil, time.Minute)

			value := <-qs.Await("k")
			So(value.Value, ShouldEqual, "v")
			So(value.Error, ShouldBeNil)
		})

		Convey("Waiters registered first all receive the value", func() {
			first := qs.Await("k")
			second := qs.Await("k")

			failure := errors.New("boom")
			qs.Store("k", nil, failure, time.Minute)

			for _, ch := range []chan QuantumValue{first, second} {
				select {
				case value := <-ch:
					So(value.Error, ShouldEqual, failure)
				case <-time.After(time.Second):
					t.Fatal("waiter was never released")
				}
			}
		})

		Convey("Expired values are swept", func() {
			qs.Store("short", 1, nil, 5*time.Millisecond)
			qs.Store("forever", 2, nil, 0)

			time.Sleep(60 * time.Millisecond)

			So(qs.Len(), ShouldEqual, 1)
		})

		Convey("An abandoned waiter is withdrawn without disturbing others", func() {
			first := qs.Await("k")
			second := qs.Await("k")

			qs.abandon("k", first)
			So(waiters(qs, "k"), ShouldEqual, 1)

			qs.Store("k", 7, nil, time.Minute)
			So((<-second).Value, ShouldEqual, 7)

			qs.abandon("gone", qs.Await("gone"))
			So(waiters(qs, "gone"), ShouldEqual, 0)
		})

		Convey("Forget drops a value", func() {
			qs.Store("k", 1, nil, time.Minute)
			qs.Forget("k")

			So(qs.Len(), ShouldEqual, 0)
		})
	})
}
