package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDigest(t *testing.T) {
	counter := DigestsProcessedTotal.WithLabelValues(OriginAPI, "csv")
	before := testutil.ToFloat64(counter)

	ObserveDigest(OriginAPI, true, time.Now())

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected counter %f, got %f", before+1, got)
	}
}

func TestLabels(t *testing.T) {
	if InputLabel(true) != "csv" || InputLabel(false) != "text" {
		t.Error("Unexpected input labels")
	}
	if ResultLabel(nil) != ResultSuccess || ResultLabel(errors.New("x")) != ResultError {
		t.Error("Unexpected result labels")
	}
}

func TestRegisterTwice(t *testing.T) {
	Register()
	Register()
}
