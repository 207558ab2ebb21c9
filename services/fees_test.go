package services

import "testing"

func TestPlatformFee(t *testing.T) {
	cases := []struct {
		gross int64
		want  int64
	}{
		{10000, 1000},
		{2500, 250},
		{555, 56},  // 55.5 rounds half up
		{333, 50},  // 33 is below the floor
		{100, 50},  // floor applies
		{0, 50},
	}
	for _, tc := range cases {
		if got := PlatformFee(tc.gross); got != tc.want {
			t.Errorf("PlatformFee(%d) = %d, want %d", tc.gross, got, tc.want)
		}
	}
}

func TestProcessingFee(t *testing.T) {
	cases := []struct {
		gross int64
		want  int64
	}{
		{10000, 320}, // 290 + 30
		{500, 45},    // 14.5 rounds half up to 15, plus 30
		{1050, 60},   // 30.45 rounds down to 30, plus 30
		{0, 30},
	}
	for _, tc := range cases {
		if got := ProcessingFee(tc.gross); got != tc.want {
			t.Errorf("ProcessingFee(%d) = %d, want %d", tc.gross, got, tc.want)
		}
	}
}

func TestNetAmount(t *testing.T) {
	// The documented example sale: 100.00 gross, 10.00 platform, 3.20
	// processing, 86.80 net.
	if got := NetAmount(10000); got != 8680 {
		t.Fatalf("NetAmount(10000) = %d, want 8680", got)
	}

	// Net plus both fees always reconstructs the gross.
	for _, gross := range []int64{100, 500, 555, 1050, 2500, 9999, 10000, 123456} {
		sum := NetAmount(gross) + PlatformFee(gross) + ProcessingFee(gross)
		if sum != gross {
			t.Errorf("fees for %d do not reconcile: net+fees = %d", gross, sum)
		}
	}
}

func TestInstantFee(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{5000, 150},
		{10000, 300},
		{50, 2}, // 1.5 rounds half up
	}
	for _, tc := range cases {
		if got := InstantFee(tc.amount); got != tc.want {
			t.Errorf("InstantFee(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
