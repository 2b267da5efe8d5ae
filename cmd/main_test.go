package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/uranai/internal/config"
	"github.com/okian/uranai/internal/feedstub"
	"github.com/okian/uranai/pkg/logger"
	"github.com/okian/uranai/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the application wired against a served feed", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		upstream := httptest.NewServer(feedstub.New(feedstub.WithOrder([]int{3, 1, 2, 4, 5, 6, 7, 8, 9, 10, 11, 12})))
		defer upstream.Close()

		cfg := config.New()
		cfg.FeedURL = upstream.URL
		cfg.StoreDriver = "memory"
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("When the update route is triggered", func() {
			status, body := get(t, srv.URL+"/update")
			convey.So(status, convey.ShouldEqual, http.StatusOK)
			convey.So(body, convey.ShouldBeEmpty)

			convey.Convey("Then both encodings serve the new record", func() {
				_, csv := get(t, srv.URL+"/csv")
				lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
				convey.So(len(lines), convey.ShouldEqual, 2)
				convey.So(lines[1], convey.ShouldEndWith, ",2,3,1,4,5,6,7,8,9,10,11,12")

				_, jsonp := get(t, srv.URL+"/jsonp?callback=cb")
				convey.So(jsonp, convey.ShouldStartWith, "cb([[")
				convey.So(jsonp, convey.ShouldEndWith, ",2,3,1,4,5,6,7,8,9,10,11,12]])")
			})

			convey.Convey("And a repeated trigger is still successful", func() {
				status, _ := get(t, srv.URL+"/update")
				convey.So(status, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the supporting routes are requested", func() {
			for path, want := range map[string]int{
				"/":             http.StatusOK,
				"/healthz":      http.StatusOK,
				"/metrics":      http.StatusOK,
				"/stats":        http.StatusOK,
				"/api-docs":     http.StatusOK,
				"/openapi.yaml": http.StatusOK,
				"/missing":      http.StatusNotFound,
			} {
				status, _ := get(t, srv.URL+path)
				convey.So(status, convey.ShouldEqual, want)
			}
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given configurations the adapters cannot honor", t, func() {
		ctx := context.Background()

		convey.Convey("Then an unknown notifier is reported", func() {
			cfg := config.New()
			cfg.StoreDriver = "memory"
			cfg.NotifyDriver = "pager"
			_, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("And an unknown store is reported", func() {
			cfg := config.New()
			cfg.StoreDriver = "redis"
			_, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("URANAI_ADDR", ":8080")
			_ = os.Setenv("URANAI_STORE_DRIVER", "memory")
			defer func() {
				_ = os.Unsetenv("URANAI_ADDR")
				_ = os.Unsetenv("URANAI_STORE_DRIVER")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("URANAI_ADDR", "")
			defer func() { _ = os.Unsetenv("URANAI_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				// Use a custom registry to avoid duplicate registration issues
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			ctx := context.Background()
			cfg := config.New()
			cfg.StoreDriver = "memory"
			svc, err := newService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}
