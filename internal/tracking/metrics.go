package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors exposes training progress as Prometheus metrics so a long
// run can be scraped while it trains.
type Collectors struct {
	epoch            prometheus.Gauge
	samplesProcessed *prometheus.GaugeVec
	batchesTotal     *prometheus.CounterVec
	metricValues     *prometheus.GaugeVec
}

// NewCollectors registers the training collectors with reg
func NewCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		epoch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "luna16_training_epoch",
			Help: "Current training epoch",
		}),
		samplesProcessed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "luna16_samples_processed",
			Help: "Samples processed so far per mode",
		}, []string{"mode"}),
		batchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna16_batches_total",
			Help: "Total number of batches run per mode",
		}, []string{"mode"}),
		metricValues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "luna16_metric_value",
			Help: "Latest value of a named training metric per mode",
		}, []string{"mode", "metric"}),
	}
}

// ObserveEpoch records the current epoch
func (c *Collectors) ObserveEpoch(epoch int) {
	c.epoch.Set(float64(epoch))
}

// ObserveBatch counts one completed batch for mode
func (c *Collectors) ObserveBatch(mode string) {
	c.batchesTotal.WithLabelValues(mode).Inc()
}

// ObserveMetric records the latest value of a named metric for mode
func (c *Collectors) ObserveMetric(mode, metric string, value float64) {
	c.metricValues.WithLabelValues(mode, metric).Set(value)
}

// ObserveSamples records the processed-sample counter for mode
func (c *Collectors) ObserveSamples(mode string, samples int) {
	c.samplesProcessed.WithLabelValues(mode).Set(float64(samples))
}
