package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the attrition namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "attrition")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_"),
				WithHTTPLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshLatencyBuckets([]float64{5, 50, 500}),
				WithStoreLatencyBuckets([]float64{1, 10}),
				WithMetricsEnabled(true),
				WithSystemRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied to registered families", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				So(manager.refreshBuckets, ShouldResemble, []float64{5, 50, 500})
				So(manager.storeBuckets, ShouldResemble, []float64{1, 10})
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				manager.idempotentReplays.Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_idempotent_replays_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options carry empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHTTPLatencyBuckets(nil),
				WithRefreshLatencyBuckets(nil),
				WithStoreLatencyBuckets([]float64{}),
				WithSystemRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "attrition")
				So(manager.histogramBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.refreshBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.storeBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestSystemRefreshInterval(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := SystemRefreshInterval()
		Reset(func() { SetSystemRefreshInterval(before) })

		Convey("When a positive interval is set", func() {
			SetSystemRefreshInterval(3 * time.Second)
			So(SystemRefreshInterval(), ShouldEqual, 3*time.Second)
		})

		Convey("When a non-positive interval is set", func() {
			SetSystemRefreshInterval(0)
			SetSystemRefreshInterval(-time.Second)
			So(SystemRefreshInterval(), ShouldEqual, before)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording refreshes", func() {
			before := testutil.ToFloat64(globalManager.refreshes.WithLabelValues("true"))
			RecordRefresh(true, 10, 4)
			RecordRefreshLatency(3.5)

			Convey("Then the counters and row gauges move", func() {
				So(testutil.ToFloat64(globalManager.refreshes.WithLabelValues("true")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.snapshotRows), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.filteredRows), ShouldEqual, 4)
			})
		})

		Convey("When a metric is unavailable", func() {
			before := testutil.ToFloat64(globalManager.metricUnavailable.WithLabelValues("correlation"))
			RecordMetricUnavailable("correlation")

			Convey("Then it is counted by name", func() {
				So(testutil.ToFloat64(globalManager.metricUnavailable.WithLabelValues("correlation")), ShouldEqual, before+1)
			})
		})

		Convey("When recording repository metrics", func() {
			before := testutil.ToFloat64(globalManager.repositorySnapshotCount)
			RecordRepositorySnapshotLoad(12.5, 42)
			RecordRepositoryWrite("insert")
			RecordRepositoryUpdateLatency(1.5)
			RecordRepositoryQueryLatency(0.5)

			Convey("Then snapshot gauges reflect the last load", func() {
				So(testutil.ToFloat64(globalManager.repositorySnapshotCount), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.repositorySnapshotLastDurationMs), ShouldEqual, 12.5)
				So(testutil.ToFloat64(globalManager.repositoryRecordsTotal), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.repositorySnapshotLastUnix), ShouldBeGreaterThan, 0)
			})

			Convey("And the record gauge can be set directly", func() {
				UpdateRepositoryRecordsTotal(7)
				So(testutil.ToFloat64(globalManager.repositoryRecordsTotal), ShouldEqual, 7)
			})
		})

		Convey("When recording idempotency metrics", func() {
			before := testutil.ToFloat64(globalManager.idempotentReplays)
			RecordIdempotentReplay()
			UpdateIdempotencyKeys(3)

			Convey("Then replays and keys are tracked", func() {
				So(testutil.ToFloat64(globalManager.idempotentReplays), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.idempotencyKeys), ShouldEqual, 3)
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordHTTPRequest("/analytics", "GET", "200")
					RecordHTTPRequestDuration("/analytics", "GET", "200", 4.2)
					RecordErrorByComponent("repository", "insert")
					RecordErrorByType("validation", "warning")
					RecordErrorByEndpoint("/employees", "POST", "validation")
					RecordErrorLatency("http", "validation", 1.1)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
			So(SystemRefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}
