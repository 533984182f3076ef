package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistanceRandom_EmptyAndSingle(t *testing.T) {
	d := NewDistanceRandom(0)
	if got := d.Value(0.5); got != -1 {
		t.Errorf("Value on empty sampler: expected -1, got %d", got)
	}

	d = NewDistanceRandom(1)
	d.SetDistance(0, 3.5)
	d.Calculate()
	if got := d.Value(0.0); got != 0 {
		t.Errorf("Value on single-entry sampler: expected 0, got %d", got)
	}
	if got := d.Value(100.0); got != 0 {
		t.Errorf("Value past the total: expected 0, got %d", got)
	}
	if pdf := d.Pdf(0); math.Abs(pdf-1.0) > 1e-12 {
		t.Errorf("single-entry pdf: expected 1, got %g", pdf)
	}
}

func TestDistanceRandom_CDFMonotonic(t *testing.T) {
	weights := []float64{2, 0, 5, 1, 3}
	d := NewDistanceRandom(len(weights))
	for i, w := range weights {
		d.SetDistance(i, w)
	}
	d.Calculate()

	if math.Abs(d.Total()-11.0) > 1e-12 {
		t.Fatalf("total: expected 11, got %g", d.Total())
	}

	// Prefix sums must never decrease.
	prev := 0.0
	for i := 0; i < d.Count(); i++ {
		if d.Distance(i) < prev {
			t.Errorf("CDF decreases at %d: %g < %g", i, d.Distance(i), prev)
		}
		prev = d.Distance(i)
	}
}

func TestDistanceRandom_ValueBoundaries(t *testing.T) {
	weights := []float64{2, 3, 5}
	d := NewDistanceRandom(len(weights))
	for i, w := range weights {
		d.SetDistance(i, w)
	}
	d.Calculate()

	// Prefix sums are 2, 5, 10.
	cases := []struct {
		x        float64
		expected int
	}{
		{-1.0, 0},
		{0.0, 0},
		{1.9, 0},
		{2.0, 0},
		{2.1, 1},
		{4.9, 1},
		{5.0, 2},
		{9.0, 2},
		{50.0, 2},
	}
	for _, tc := range cases {
		if got := d.Value(tc.x); got != tc.expected {
			t.Errorf("Value(%g): expected %d, got %d", tc.x, tc.expected, got)
		}
	}
}

func TestDistanceRandom_PdfMatchesWeights(t *testing.T) {
	weights := []float64{2, 0, 5, 1, 3}
	d := NewDistanceRandom(len(weights))
	for i, w := range weights {
		d.SetDistance(i, w)
	}
	d.Calculate()

	sum := 0.0
	for i, w := range weights {
		pdf := d.Pdf(i)
		if math.Abs(pdf-w/11.0) > 1e-12 {
			t.Errorf("pdf[%d]: expected %g, got %g", i, w/11.0, pdf)
		}
		sum += pdf
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("pdf sum: expected 1, got %g", sum)
	}
}

func TestDistanceRandom_SamplingFrequency(t *testing.T) {
	weights := []float64{1, 3, 6}
	d := NewDistanceRandom(len(weights))
	for i, w := range weights {
		d.SetDistance(i, w)
	}
	d.Calculate()

	rng := rand.New(rand.NewSource(42))
	counts := make([]int, len(weights))
	const n = 100000
	for i := 0; i < n; i++ {
		id := d.Random(rng.Float64())
		if id < 0 || id >= len(weights) {
			t.Fatalf("Random returned out-of-range id %d", id)
		}
		counts[id]++
	}

	for i, w := range weights {
		got := float64(counts[i]) / n
		expected := w / 10.0
		if math.Abs(got-expected) > 0.01 {
			t.Errorf("sample frequency of %d: expected ~%g, got %g", i, expected, got)
		}
	}
}
