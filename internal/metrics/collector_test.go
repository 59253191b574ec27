package metrics_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ollama-proxy/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))
		collector = metrics.NewCollector(100, log)
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("should process request events", func() {
		collector.EventChannel() <- metrics.MetricEvent{
			Type:      metrics.EventRequestReceived,
			Timestamp: time.Now(),
			Instance:  "a",
		}

		Eventually(func() int64 {
			return collector.Snapshot().TotalRequests
		}).Should(Equal(int64(1)))
	})

	It("should process response events", func() {
		collector.EventChannel() <- metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Timestamp:  time.Now(),
			Instance:   "a",
			Duration:   50 * time.Millisecond,
			StatusCode: 200,
		}

		Eventually(func() int64 {
			return collector.Snapshot().Instances["a"].StatusCodes[200]
		}).Should(Equal(int64(1)))
	})

	It("should process auth denial events", func() {
		collector.EventChannel() <- metrics.MetricEvent{
			Type:      metrics.EventAuthDenied,
			Timestamp: time.Now(),
		}

		Eventually(func() int64 {
			return collector.Snapshot().AuthDenials
		}).Should(Equal(int64(1)))
	})

	It("should serve a JSON snapshot over HTTP", func() {
		collector.EventChannel() <- metrics.MetricEvent{
			Type:     metrics.EventInstanceSelected,
			Instance: "a",
		}

		Eventually(func() int64 {
			return collector.Snapshot().Instances["a"].Selections
		}).Should(Equal(int64(1)))

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		collector.Handler()(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

		var snap metrics.Snapshot
		Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
		Expect(snap.Instances).To(HaveKey("a"))
	})
})
