package core

import "net/http"

const METRICS_SERVICE = "metrics"

const (
	MetricOutcomeSuccess = "success"
)

type MetricsService interface {
	// RecordAccountOperation counts one account operation by outcome. The
	// outcome is either MetricOutcomeSuccess or an AccountErrorType.
	RecordAccountOperation(operation string, outcome string)

	Handler() http.Handler

	Service
}

// MetricOutcome derives the outcome label for err.
func MetricOutcome(err error) string {
	if err == nil {
		return MetricOutcomeSuccess
	}

	if accErr := AsAccountError(err); accErr != nil {
		return string(accErr.Key)
	}

	return "error"
}
