package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_NilReceiver(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.Record(context.Background(), "send", time.Millisecond, nil)
	})
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestNew_ExportsThroughPrometheus(t *testing.T) {
	o, err := New("careerbot-test")
	require.NoError(t, err)

	o.Record(context.Background(), "send", 3*time.Millisecond, nil)
	o.Record(context.Background(), "send", 5*time.Millisecond, errors.New("boom"))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.Contains(f.GetName(), "session") && strings.Contains(f.GetName(), "operation") {
			found = true
		}
	}
	assert.True(t, found, "session operation instruments are gathered")

	require.NoError(t, o.Shutdown(context.Background()))
}
