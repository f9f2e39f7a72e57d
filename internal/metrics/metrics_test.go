package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDecision_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(decisionsTotal.WithLabelValues("true"))

	ObserveDecision(true, 0.001)

	after := testutil.ToFloat64(decisionsTotal.WithLabelValues("true"))
	if after != before+1 {
		t.Fatalf("decisionsTotal[true] = %v, want %v", after, before+1)
	}
}

func TestObserveDecision_LabelsPermitAndDenySeparately(t *testing.T) {
	beforePermit := testutil.ToFloat64(decisionsTotal.WithLabelValues("true"))
	beforeDeny := testutil.ToFloat64(decisionsTotal.WithLabelValues("false"))

	ObserveDecision(false, 0.002)

	if got := testutil.ToFloat64(decisionsTotal.WithLabelValues("false")); got != beforeDeny+1 {
		t.Fatalf("decisionsTotal[false] = %v, want %v", got, beforeDeny+1)
	}
	if got := testutil.ToFloat64(decisionsTotal.WithLabelValues("true")); got != beforePermit {
		t.Fatalf("decisionsTotal[true] changed unexpectedly: %v", got)
	}
}

func TestSetPoliciesEnabled_ReportsGaugeValue(t *testing.T) {
	SetPoliciesEnabled(7)
	if got := testutil.ToFloat64(policiesEnabled); got != 7 {
		t.Fatalf("policiesEnabled = %v, want 7", got)
	}

	SetPoliciesEnabled(3)
	if got := testutil.ToFloat64(policiesEnabled); got != 3 {
		t.Fatalf("policiesEnabled = %v, want 3", got)
	}
}
