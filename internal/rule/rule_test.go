package rule

import "testing"

func f(v float64) *float64 { return &v }

func TestMinValuePassAndFail(t *testing.T) {
	r := Evaluate(MinValue, f(10), Params{Min: f(5)})
	if !r.Passed || r.Severity != Passed {
		t.Fatalf("expected pass, got %+v", r)
	}
	r = Evaluate(MinValue, f(3), Params{Min: f(5), Severity: Fatal})
	if r.Passed || r.Severity != Fatal {
		t.Fatalf("expected fatal fail, got %+v", r)
	}
}

func TestNullSensorValueFailsNonAnomalyRule(t *testing.T) {
	r := Evaluate(MaxValue, nil, Params{Max: f(5), Severity: Error})
	if r.Passed || r.Message != "sensor returned null" {
		t.Fatalf("expected null failure, got %+v", r)
	}
}

func TestAnomalyInsufficientHistory(t *testing.T) {
	r := Evaluate(AnomalyPercentile, f(100), Params{HistoricalValues: []float64{1, 2, 3}})
	if !r.Passed || r.Message != "insufficient history" {
		t.Fatalf("expected insufficient-history pass, got %+v", r)
	}
}

func TestAnomalyWithinFence(t *testing.T) {
	hist := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	r := Evaluate(AnomalyPercentile, f(14), Params{HistoricalValues: hist})
	if !r.Passed {
		t.Fatalf("expected pass within fence, got %+v", r)
	}
}

func TestAnomalyOutsideFence(t *testing.T) {
	hist := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	r := Evaluate(AnomalyPercentile, f(10000), Params{HistoricalValues: hist, Severity: Fatal})
	if r.Passed || r.Severity != Fatal {
		t.Fatalf("expected fatal fail outside fence, got %+v", r)
	}
}

func TestAnomalyNullSensorValueFails(t *testing.T) {
	hist := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	r := Evaluate(AnomalyPercentile, nil, Params{HistoricalValues: hist, Severity: Warning})
	if r.Passed || r.Severity != Warning {
		t.Fatalf("expected warning fail on null, got %+v", r)
	}
}

func TestAnomalyZeroIQRStableHistory(t *testing.T) {
	hist := []float64{5, 5, 5, 5, 5, 5, 5}
	r := Evaluate(AnomalyPercentile, f(5), Params{HistoricalValues: hist})
	if !r.Passed {
		t.Fatalf("expected pass on exact stable value, got %+v", r)
	}
	r = Evaluate(AnomalyPercentile, f(6), Params{HistoricalValues: hist, Severity: Error})
	if r.Passed {
		t.Fatalf("expected fail on deviation from stable value, got %+v", r)
	}
}

func TestIsTrueIsFalse(t *testing.T) {
	if r := Evaluate(IsTrue, f(1), Params{}); !r.Passed {
		t.Fatalf("expected true pass, got %+v", r)
	}
	if r := Evaluate(IsFalse, f(0), Params{}); !r.Passed {
		t.Fatalf("expected false pass, got %+v", r)
	}
}

func TestEqualToNotEqualTo(t *testing.T) {
	if r := Evaluate(EqualTo, f(3), Params{Equal: f(3)}); !r.Passed {
		t.Fatalf("expected equal pass, got %+v", r)
	}
	if r := Evaluate(NotEqualTo, f(3), Params{NotEqual: f(3), Severity: Error}); r.Passed {
		t.Fatalf("expected not-equal fail, got %+v", r)
	}
}
