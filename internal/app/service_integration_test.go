package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/uranai/internal/adapters/feed"
	"github.com/okian/uranai/internal/adapters/notify"
	"github.com/okian/uranai/internal/adapters/repository"
	service "github.com/okian/uranai/internal/app"
	"github.com/okian/uranai/internal/domain/calendar"
	"github.com/okian/uranai/internal/feedstub"
	"github.com/okian/uranai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service reading a served feed into a bolt store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stub := feedstub.New(
			feedstub.WithClock(may3),
			feedstub.WithEncoding(feedstub.EncodingShiftJIS),
			feedstub.WithOrder(sampleOrder),
		)
		upstream := httptest.NewServer(stub)
		defer upstream.Close()

		store, err := repository.Open(ctx, repository.Settings{
			Driver: repository.DriverBolt,
			Path:   filepath.Join(t.TempDir(), "uranai.db"),
		})
		So(err, ShouldBeNil)

		notifier := &recordingNotifier{}
		svc := service.New(
			service.WithLogger(logger.Discard()),
			service.WithStore(store, repository.DriverBolt),
			service.WithFetcher(feed.NewHTTPFetcher(upstream.URL, feed.WithTimeout(5*time.Second))),
			service.WithNotifier(notify.Instrument(notifier)),
			service.WithResolver(calendar.NewResolver(calendar.WithClock(may3))),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When ingesting end-to-end", func() {
			res, err := svc.Ingest(ctx)

			Convey("Then the record is persisted and served", func() {
				So(err, ShouldBeNil)
				So(res.Created, ShouldBeTrue)
				So(res.RunID, ShouldNotBeBlank)
				So(stub.Hits(), ShouldEqual, 1)

				ds, err := svc.Dataset(ctx)
				So(err, ShouldBeNil)
				So(len(ds), ShouldEqual, 1)
				So(ds[0].Ranks, ShouldResemble, [12]int{2, 3, 1, 4, 5, 6, 7, 8, 9, 10, 11, 12})

				stats := svc.GetStats(ctx)
				So(stats["records"], ShouldEqual, 1)
				So(stats["feedURL"], ShouldEqual, upstream.URL)
				So(notifier.sent(), ShouldBeEmpty)
			})

			Convey("And the next day's run appends a second row", func() {
				tomorrow := func() time.Time { return may3().Add(24 * time.Hour) }
				nextUpstream := httptest.NewServer(feedstub.New(feedstub.WithClock(tomorrow)))
				defer nextUpstream.Close()

				next := service.New(
					service.WithLogger(logger.Discard()),
					service.WithStore(store, repository.DriverBolt),
					service.WithFetcher(feed.NewHTTPFetcher(nextUpstream.URL)),
					service.WithNotifier(notifier),
					service.WithResolver(calendar.NewResolver(calendar.WithClock(tomorrow))),
				)
				So(next.Start(ctx), ShouldBeNil)

				res, err := next.Ingest(ctx)
				So(err, ShouldBeNil)
				So(res.Record.Date, ShouldEqual, "20240504")
				So(res.Record.Code, ShouldEqual, "123456789abc")

				ds, err := next.Dataset(ctx)
				So(err, ShouldBeNil)
				So(len(ds), ShouldEqual, 2)
				So(ds[0].Day, ShouldEqual, 3)
				So(ds[1].Day, ShouldEqual, 4)
			})
		})

		Convey("When the upstream is failing", func() {
			failing := httptest.NewServer(feedstub.New(feedstub.WithStatus(http.StatusInternalServerError)))
			defer failing.Close()

			broken := service.New(
				service.WithLogger(logger.Discard()),
				service.WithStore(repository.NewMemStore(), repository.DriverMemory),
				service.WithFetcher(feed.NewHTTPFetcher(failing.URL)),
				service.WithNotifier(notifier),
			)
			So(broken.Start(ctx), ShouldBeNil)
			defer broken.Stop()

			_, err := broken.Ingest(ctx)

			Convey("Then the run fails with a fetch error and alerts once", func() {
				So(errors.Is(err, service.ErrFetchFailed), ShouldBeTrue)
				So(len(notifier.sent()), ShouldEqual, 1)
				So(notifier.sent()[0], ShouldStartWith, service.MsgFetchFailed)
			})
		})
	})
}
