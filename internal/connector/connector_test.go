package connector

import "testing"

func TestQuoteDouble(t *testing.T) {
	cases := map[string]string{
		"orders":       `"orders"`,
		`we"ird`:       `"we""ird"`,
	}
	for in, want := range cases {
		if got := quoteDouble(in); got != want {
			t.Errorf("quoteDouble(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteBacktick(t *testing.T) {
	if got, want := quoteBacktick("orders"), "`orders`"; got != want {
		t.Errorf("quoteBacktick = %q, want %q", got, want)
	}
	if got, want := quoteBacktick("a`b"), "`a``b`"; got != want {
		t.Errorf("quoteBacktick = %q, want %q", got, want)
	}
}

func TestQuoteBracket(t *testing.T) {
	if got, want := quoteBracket("orders"), "[orders]"; got != want {
		t.Errorf("quoteBracket = %q, want %q", got, want)
	}
	if got, want := quoteBracket("a]b"), "[a]]b]"; got != want {
		t.Errorf("quoteBracket = %q, want %q", got, want)
	}
}

func TestQuoteOracleUppercases(t *testing.T) {
	if got, want := quoteOracle("orders"), `"ORDERS"`; got != want {
		t.Errorf("quoteOracle = %q, want %q", got, want)
	}
}

func TestToFloat64Coercion(t *testing.T) {
	if f := toFloat64(nil); f != nil {
		t.Errorf("toFloat64(nil) = %v, want nil", f)
	}
	if f := toFloat64(true); f == nil || *f != 1.0 {
		t.Errorf("toFloat64(true) = %v, want 1.0", f)
	}
	if f := toFloat64(false); f == nil || *f != 0.0 {
		t.Errorf("toFloat64(false) = %v, want 0.0", f)
	}
	if f := toFloat64(int64(42)); f == nil || *f != 42.0 {
		t.Errorf("toFloat64(int64(42)) = %v, want 42.0", f)
	}
	if f := toFloat64("3.14"); f == nil || *f != 3.14 {
		t.Errorf("toFloat64(\"3.14\") = %v, want 3.14", f)
	}
	if f := toFloat64("not-a-number"); f != nil {
		t.Errorf("toFloat64(\"not-a-number\") = %v, want nil", f)
	}
}
