package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends everything gathered by reg to a Pushgateway under job.
// Short-lived commands use this instead of exposing a scrape endpoint.
func Push(url, job string, reg *prometheus.Registry) error {
	if err := push.New(url, job).Gatherer(reg).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
