package compare_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pmwiki/internal/domain/compare"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session registry", t, func() {
		clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		r := compare.NewRegistry(
			compare.WithMaxSessions(2),
			compare.WithSessionTTL(time.Hour),
			compare.WithClock(clock.Now),
			compare.WithSetOptions(compare.WithMaxItems(4)),
		)
		defer r.Close()

		Convey("When a visitor arrives without a session", func() {
			id, set, created := r.Acquire(ctx, "")

			Convey("Then a new session is issued", func() {
				So(created, ShouldBeTrue)
				_, err := uuid.Parse(id)
				So(err, ShouldBeNil)
				So(set.Cap(), ShouldEqual, 4)
				So(r.Len(), ShouldEqual, 1)
			})

			Convey("Then returning visitors observe the same set", func() {
				set.Add(item("a"))
				again, same, created := r.Acquire(ctx, id)
				So(created, ShouldBeFalse)
				So(again, ShouldEqual, id)
				So(same, ShouldEqual, set)
				So(same.Has("a"), ShouldBeTrue)

				looked, ok := r.Lookup(id)
				So(ok, ShouldBeTrue)
				So(looked, ShouldEqual, set)
			})
		})

		Convey("When the cookie value is not a session id", func() {
			id, _, created := r.Acquire(ctx, "not-a-uuid")

			Convey("Then a fresh session replaces it", func() {
				So(created, ShouldBeTrue)
				So(id, ShouldNotEqual, "not-a-uuid")
				_, ok := r.Lookup("not-a-uuid")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When more sessions than the bound are created", func() {
			first, _, _ := r.Acquire(ctx, "")
			clock.Advance(time.Second)
			second, _, _ := r.Acquire(ctx, "")
			clock.Advance(time.Second)
			r.Acquire(ctx, first) // first is now most recently used
			clock.Advance(time.Second)
			third, _, _ := r.Acquire(ctx, "")

			Convey("Then the least recently used session is evicted", func() {
				So(r.Len(), ShouldEqual, 2)
				_, ok := r.Lookup(second)
				So(ok, ShouldBeFalse)
				_, ok = r.Lookup(first)
				So(ok, ShouldBeTrue)
				_, ok = r.Lookup(third)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a session is idle past the TTL", func() {
			id, _, _ := r.Acquire(ctx, "")
			clock.Advance(2 * time.Hour)

			Convey("Then it is no longer found", func() {
				_, ok := r.Lookup(id)
				So(ok, ShouldBeFalse)
				So(r.Len(), ShouldEqual, 0)
			})
		})

		Convey("When sweeping", func() {
			old, _, _ := r.Acquire(ctx, "")
			clock.Advance(90 * time.Minute)
			fresh, _, _ := r.Acquire(ctx, "")

			removed := r.Sweep()

			Convey("Then only expired sessions are dropped", func() {
				So(removed, ShouldEqual, 1)
				_, ok := r.Lookup(old)
				So(ok, ShouldBeFalse)
				_, ok = r.Lookup(fresh)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When an evicted session had a watcher", func() {
			_, set, _ := r.Acquire(ctx, "")
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			ch := set.Subscribe(watchCtx)
			r.Acquire(ctx, "")
			r.Acquire(ctx, "")

			Convey("Then the watcher's stream ends", func() {
				for range ch {
				}
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})
	})
}
