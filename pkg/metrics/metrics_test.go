package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every metric is registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.ingestRuns.WithLabelValues(OutcomeStored).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.recordsInserted.Inc()

			Convey("Then names and labels follow the options", func() {
				expected := `
# HELP test_sub_records_inserted_total Ranking records created
# TYPE test_sub_records_inserted_total counter
test_sub_records_inserted_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_sub_records_inserted_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When registering two managers on one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When ingestion runs are recorded", func() {
			before := testutil.ToFloat64(globalManager.ingestRuns.WithLabelValues(OutcomeDuplicate))
			RecordIngestRun(OutcomeDuplicate)
			RecordIngestRun(OutcomeDuplicate)

			Convey("Then the outcome counter grows", func() {
				after := testutil.ToFloat64(globalManager.ingestRuns.WithLabelValues(OutcomeDuplicate))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When cache activity is recorded", func() {
			hits := testutil.ToFloat64(globalManager.cacheHits)
			misses := testutil.ToFloat64(globalManager.cacheMisses)
			RecordCacheHit()
			RecordCacheMiss()
			RecordCacheMiss()
			UpdateCacheEntries(1)

			Convey("Then hits, misses and entries are tracked", func() {
				So(testutil.ToFloat64(globalManager.cacheHits)-hits, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.cacheMisses)-misses, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, 1)
			})
		})

		Convey("When the record total is updated", func() {
			UpdateRecordsTotal(42)

			Convey("Then the gauge holds the last value", func() {
				So(testutil.ToFloat64(globalManager.recordsTotal), ShouldEqual, 42)
			})
		})

		Convey("When latency and error metrics are recorded", func() {
			So(func() {
				RecordIngestLatency(12.5)
				RecordFeedFetch("ok")
				RecordFeedFetchLatency(80)
				RecordNotification(OutcomeNotifySent)
				RecordRecordInserted()
				RecordCacheFlush()
				RecordDatasetBuildLatency(0.4)
				RecordRepositoryUpdateLatency(1.2)
				RecordRepositoryQueryLatency(3.4)
				RecordHTTPRequest("csv", "GET", "200")
				RecordHTTPRequestDuration("csv", "GET", "200", 2)
				RecordErrorByComponent("repository", "insert")
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("update", "GET", "server_error")
				RecordErrorLatency("http", "server_error", 5)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestRecordingConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.feedFetches.WithLabelValues("parse"))
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordFeedFetch("parse")
				RecordHTTPRequest("jsonp", "GET", "200")
			}()
		}
		wg.Wait()

		Convey("Then no increments are lost", func() {
			So(testutil.ToFloat64(globalManager.feedFetches.WithLabelValues("parse"))-before, ShouldEqual, 100)
		})
	})
}
