package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/qgate/quantumpb"
)

func TestRedisCache(t *testing.T) {
	Convey("Given a redis cache", t, func() {
		mr := miniredis.RunT(t)
		cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		defer cache.Close()

		ctx := context.Background()

		Convey("A missing key is a miss, not an error", func() {
			ro, ok, err := cache.Get(ctx, "absent")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(ro, ShouldBeNil)
		})

		Convey("Stored readouts come back bit for bit", func() {
			So(cache.Set(ctx, "k", []int32{1, 0, 0, 1}, time.Minute), ShouldBeNil)

			stored, err := mr.Get("k")
			So(err, ShouldBeNil)
			So(stored, ShouldEqual, "1001")
			So(mr.TTL("k"), ShouldEqual, time.Minute)

			ro, ok, err := cache.Get(ctx, "k")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(ro, ShouldResemble, []int32{1, 0, 0, 1})
		})

		Convey("A corrupt entry is reported", func() {
			So(mr.Set("bad", "10x"), ShouldBeNil)

			_, ok, err := cache.Get(ctx, "bad")
			So(err, ShouldNotBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("An unreachable server is an error", func() {
			mr.Close()

			_, _, err := cache.Get(ctx, "k")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("DialRedis fails fast without a server", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := DialRedis(ctx, "127.0.0.1:1")
		So(err, ShouldNotBeNil)
	})
}

func TestCacheKey(t *testing.T) {
	Convey("Given a request", t, func() {
		req := &quantumpb.RunQuilRequest{
			Program: "H 0",
			Shots:   10,
			Params:  map[string]float64{"a": 1, "b": 2, "c": 3},
		}

		key := cacheKey(req)

		Convey("The key is namespaced and hex encoded", func() {
			So(strings.HasPrefix(key, keyPrefix), ShouldBeTrue)
			So(len(key), ShouldEqual, len(keyPrefix)+64)
		})

		Convey("Map order does not matter", func() {
			same := &quantumpb.RunQuilRequest{
				Program: "H 0",
				Shots:   10,
				Params:  map[string]float64{"c": 3, "b": 2, "a": 1},
			}
			So(cacheKey(same), ShouldEqual, key)
		})

		Convey("Shots and values change the key", func() {
			more := &quantumpb.RunQuilRequest{Program: "H 0", Shots: 11, Params: req.Params}
			So(cacheKey(more), ShouldNotEqual, key)

			moved := &quantumpb.RunQuilRequest{
				Program: "H 0",
				Shots:   10,
				Params:  map[string]float64{"a": 1, "b": 2, "c": 3.5},
			}
			So(cacheKey(moved), ShouldNotEqual, key)
		})
	})
}
