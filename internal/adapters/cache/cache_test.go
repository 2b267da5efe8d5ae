package cache

import (
	"context"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemory(t *testing.T) {
	Convey("Given an empty in-memory cache", t, func() {
		ctx := context.Background()
		c := NewInMemory[[]int]()

		Convey("When reading a missing key", func() {
			v, ok := c.Get(ctx, "data")

			Convey("Then it reports a miss", func() {
				So(ok, ShouldBeFalse)
				So(v, ShouldBeNil)
			})
		})

		Convey("When a value is stored", func() {
			c.Put(ctx, "data", []int{1, 2, 3})

			Convey("Then it can be read back", func() {
				v, ok := c.Get(ctx, "data")
				So(ok, ShouldBeTrue)
				So(v, ShouldResemble, []int{1, 2, 3})
				So(c.Len(), ShouldEqual, 1)
			})

			Convey("And InvalidateAll drops every key", func() {
				c.Put(ctx, "other", []int{4})
				c.InvalidateAll(ctx)

				_, ok := c.Get(ctx, "data")
				So(ok, ShouldBeFalse)
				_, ok = c.Get(ctx, "other")
				So(ok, ShouldBeFalse)
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When used concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					c.Put(ctx, "data", []int{i})
					_, _ = c.Get(ctx, "data")
					if i%10 == 0 {
						c.InvalidateAll(ctx)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then it stays consistent", func() {
				So(c.Len(), ShouldBeLessThanOrEqualTo, 1)
			})
		})
	})
}

func TestInMemoryImplementsCache(t *testing.T) {
	Convey("Given the in-memory cache", t, func() {
		Convey("Then it satisfies the Cache interface", func() {
			var c Cache[string] = NewInMemory[string]()
			So(c, ShouldNotBeNil)
		})
	})
}
