package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
)

const metricNamespace = "depsync"

const (
	strategyRunsMetricName     = "strategy_runs_total"
	strategyDurationMetricName = "strategy_duration_seconds"
	usedInfosMetricName        = "used_dependency_infos"
	submissionsMetricName      = "submissions_total"
	lastRunMetricName          = "last_run_timestamp_seconds"
)

const (
	strategyLabel = "strategy"
	resultLabel   = "result"
	stateLabel    = "state"
	changedLabel  = "changes_made"
)

const (
	resultSuccessVal = "success"
	resultFailureVal = "failure"
)

// Recorder collects the metrics of a single run in its own registry and
// writes them in the textfile collector format on Flush. An empty path
// keeps the metrics in memory only.
type Recorder struct {
	path     string
	registry *prometheus.Registry
	log      logger.FieldLogger

	strategyRuns     *prometheus.CounterVec
	strategyDuration *prometheus.GaugeVec
	usedInfos        *prometheus.GaugeVec
	submissions      *prometheus.CounterVec
	lastRun          prometheus.Gauge
}

func NewRecorder(path string, log logger.FieldLogger) *Recorder {
	recorder := &Recorder{
		path:     path,
		registry: prometheus.NewRegistry(),
		log:      log,
		strategyRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      strategyRunsMetricName,
				Help:      "count of strategy runs by outcome",
			},
			[]string{strategyLabel, resultLabel},
		),
		strategyDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      strategyDurationMetricName,
				Help:      "duration of the last strategy run",
			},
			[]string{strategyLabel},
		),
		usedInfos: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      usedInfosMetricName,
				Help:      "count of dependency infos used by the last strategy run",
			},
			[]string{strategyLabel},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      submissionsMetricName,
				Help:      "count of pull request submissions by final state",
			},
			[]string{stateLabel, changedLabel},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      lastRunMetricName,
				Help:      "unix time of the last flushed run",
			},
		),
	}

	recorder.registry.MustRegister(
		recorder.strategyRuns,
		recorder.strategyDuration,
		recorder.usedInfos,
		recorder.submissions,
		recorder.lastRun,
	)
	return recorder
}

func (it *Recorder) ObserveStrategy(name string, usedInfos int, duration time.Duration, err error) {
	result := resultSuccessVal
	if err != nil {
		result = resultFailureVal
	}

	cnt, metricErr := it.strategyRuns.GetMetricWith(prometheus.Labels{strategyLabel: name, resultLabel: result})
	if metricErr != nil {
		it.logGetMetricFailed(strategyRunsMetricName, metricErr)
		return
	}
	cnt.Inc()

	it.strategyDuration.WithLabelValues(name).Set(duration.Seconds())
	it.usedInfos.WithLabelValues(name).Set(float64(usedInfos))
}

func (it *Recorder) ObserveSubmission(state string, changesMade bool) {
	cnt, err := it.submissions.GetMetricWith(prometheus.Labels{
		stateLabel:   state,
		changedLabel: strconv.FormatBool(changesMade),
	})
	if err != nil {
		it.logGetMetricFailed(submissionsMetricName, err)
		return
	}
	cnt.Inc()
}

// Flush writes the registry to the configured textfile.
func (it *Recorder) Flush() error {
	if it.path == "" {
		return nil
	}

	it.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(it.path, it.registry); err != nil {
		return err
	}
	it.log.Debugf("Wrote metrics to '%s'", it.path)
	return nil
}

// Gatherer exposes the run registry.
func (it *Recorder) Gatherer() prometheus.Gatherer {
	return it.registry
}

func (it *Recorder) logGetMetricFailed(metricName string, err error) {
	it.log.WithField("metric", metricName).Warnf("could not record metric: %v", err)
}
