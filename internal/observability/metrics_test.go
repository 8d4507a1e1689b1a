package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestObserveAction(t *testing.T) {
	m := Default()

	before := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("test_verb", "ok"))
	m.ObserveAction("test_verb", time.Now().Add(-time.Millisecond), nil)
	assert.Equal(t, before+1, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("test_verb", "ok")))

	beforeErr := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("test_verb", "error"))
	m.ObserveAction("test_verb", time.Now(), errors.New("boom"))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("test_verb", "error")))
}

func TestExpectationCounters(t *testing.T) {
	m := Default()

	before := testutil.ToFloat64(m.ExpectationFailures.WithLabelValues("visible"))
	m.ExpectationFailures.WithLabelValues("visible").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(m.ExpectationFailures.WithLabelValues("visible")))
}
