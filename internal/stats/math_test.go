package stats

import "testing"

func TestMedian_Odd(t *testing.T) {
	got := Median([]float64{5, 1, 3})
	if got != 3 {
		t.Errorf("Expected median 3, got %f", got)
	}
}

func TestMedian_Even(t *testing.T) {
	got := Median([]float64{4, 1, 3, 2})
	if got != 2.5 {
		t.Errorf("Expected median 2.5, got %f", got)
	}
}

func TestMedian_Empty(t *testing.T) {
	if got := Median(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %f", got)
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("Median mutated its input: %v", in)
	}
}

func TestLowerMedianIndex(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0},
		{1, 0},
		{2, 1},
		{5, 2},
		{10, 5},
	}
	for _, c := range cases {
		if got := LowerMedianIndex(c.n); got != c.want {
			t.Errorf("LowerMedianIndex(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
