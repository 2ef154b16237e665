package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_Increment(t *testing.T) {
	transition := StateTransitions.WithLabelValues("initial", "asking_email")
	before := testutil.ToFloat64(transition)
	transition.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(transition))

	storeErr := SessionStoreErrors.WithLabelValues("redis", "save")
	before = testutil.ToFloat64(storeErr)
	storeErr.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(storeErr))
}

func TestCollectors_Lint(t *testing.T) {
	for name, c := range map[string]prometheus.Collector{
		"turns":       TurnsProcessed,
		"predictions": IntentPredictions,
		"transitions": StateTransitions,
		"classify":    ClassifyDuration,
		"started":     SessionsStarted,
		"resets":      SessionResets,
		"store":       SessionStoreErrors,
	} {
		problems, err := testutil.CollectAndLint(c)
		require.NoError(t, err, name)
		assert.Empty(t, problems, name)
	}
}
