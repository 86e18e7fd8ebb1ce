package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRoundHalfUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		exponent int32
		want     string
	}{
		{"100.5", 0, "101"},
		{"100.4", 0, "100"},
		{"1.005", 2, "1.01"},
		{"1.004", 2, "1"},
		{"99999.999", 0, "100000"},
	}
	for _, tc := range cases {
		got := Round(dec(tc.in), tc.exponent)
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("Round(%s, %d) = %s, want %s", tc.in, tc.exponent, got, tc.want)
		}
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	got := Percent(dec("100000"), dec("20"))
	if !got.Equal(dec("20000")) {
		t.Fatalf("20%% of 100000 = %s", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	rate := dec("0.000079")
	base := dec("1250000")

	converted := Convert(base, rate)
	back := ToBase(converted, rate)

	if !back.Equal(base) {
		t.Fatalf("round trip drifted: %s != %s", back, base)
	}
}
