package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestObserveRejectionIncrements(t *testing.T) {
	m := New()
	m.ObserveRejection("SequenceMismatch")
	m.ObserveRejection("SequenceMismatch")

	metric := &dto.Metric{}
	if err := m.RejectionsByCode.WithLabelValues("SequenceMismatch").Write(metric); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 rejections recorded, got %v", got)
	}
}

func TestNewInstancesDoNotShareRegistry(t *testing.T) {
	a := New()
	b := New()
	a.CommitsTotal.Inc()

	metric := &dto.Metric{}
	if err := b.CommitsTotal.Write(metric); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 0 {
		t.Fatalf("expected independent registries, got %v on b", got)
	}
}
