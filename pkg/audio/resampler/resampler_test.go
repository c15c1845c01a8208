package resampler

import (
	"math"
	"testing"
)

func TestPassthrough(t *testing.T) {
	r, err := New(16000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Passthrough() {
		t.Fatal("expected passthrough")
	}
	in := []float32{0.1, -0.2, 0.3}
	out, err := r.Process(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestInvalidRates(t *testing.T) {
	for _, rates := range [][2]int{{0, 16000}, {48000, 0}, {-1, -1}} {
		if _, err := New(rates[0], rates[1]); err == nil {
			t.Errorf("New(%d, %d) should fail", rates[0], rates[1])
		}
	}
}

func TestDownsampleLength(t *testing.T) {
	r, err := New(48000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	block := make([]float32, 4800)
	total := 0
	for n := 0; n < 10; n++ {
		for i := range block {
			idx := n*len(block) + i
			block[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(idx)/48000))
		}
		out, err := r.Process(block)
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range out {
			if s > 1 || s < -1 {
				t.Fatalf("sample %v out of range", s)
			}
		}
		total += len(out)
	}
	// One second of input; filter delay may hold back a little output.
	if total < 14000 || total > 16100 {
		t.Errorf("total output = %d, want about 16000", total)
	}
}

func TestProcessAfterClose(t *testing.T) {
	r, err := New(48000, 24000)
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	if _, err := r.Process([]float32{0}); err == nil {
		t.Error("Process after Close should fail")
	}
}
