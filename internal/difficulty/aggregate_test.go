package difficulty

import (
	"context"
	"math"
	"testing"

	"github.com/vovakirdan/beatrate/internal/combo"
)

func TestAggregateSingleLoad(t *testing.T) {
	if got := Aggregate([]float64{7}, 0.99); got != 7 {
		t.Errorf("Aggregate([7]) = %v, want 7", got)
	}
}

func TestAggregateEmptyIsZero(t *testing.T) {
	if got := Aggregate(nil, 0.99); got != 0 {
		t.Errorf("Aggregate(nil) = %v, want 0", got)
	}
}

func TestAggregateNonFinite(t *testing.T) {
	if got := Aggregate([]float64{math.Inf(1), 1}, 0.99); got != 0 {
		t.Errorf("Aggregate with +Inf = %v, want 0", got)
	}
	if got := Aggregate([]float64{math.NaN()}, 0.99); got != 0 {
		t.Errorf("Aggregate with NaN = %v, want 0", got)
	}
}

func TestAggregateWeightsHardestFirst(t *testing.T) {
	loads := []float64{1, 10}
	got := Aggregate(loads, 0.5)
	// (10*1 + 1*0.5) / (1 + 0.5)
	want := 10.5 / 1.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Aggregate = %v, want %v", got, want)
	}
	if loads[0] != 1 {
		t.Error("Aggregate must not reorder the caller's slice")
	}
}

func TestAggregateScaleIndependent(t *testing.T) {
	// A uniform load is reported as itself regardless of how many buckets.
	for _, n := range []int{1, 10, 1000} {
		loads := make([]float64, n)
		for i := range loads {
			loads[i] = 3
		}
		if got := Aggregate(loads, 0.99); math.Abs(got-3) > 1e-9 {
			t.Errorf("Aggregate of %d uniform loads = %v, want 3", n, got)
		}
	}
}

func TestBucketsLoads(t *testing.T) {
	b := NewBuckets(0, 100, 2)
	b.Add(10, 0, 2)
	b.Add(90, 1, 3)
	b.Add(450, 0, 4) // windows 1..3 stay empty

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	loads := b.Loads(1)
	if len(loads) != 2 || loads[0] != 5 || loads[1] != 4 {
		t.Errorf("Loads(1) = %v, want [5 4]", loads)
	}

	loads = b.Loads(2)
	if loads[0] != 13 {
		t.Errorf("Loads(2)[0] = %v, want 4+9", loads[0])
	}
}

func TestBucketsFarTimestampStaysSparse(t *testing.T) {
	b := NewBuckets(0, 100, 1)
	b.Add(0, 0, 1)
	b.Add(1e11, 0, 2)
	b.Add(50, 0, 1)

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	if len(b.windows) != 2 {
		t.Errorf("stored %d windows, want only the 2 occupied ones", len(b.windows))
	}
	loads := b.Loads(1)
	if len(loads) != 2 || loads[0] != 2 || loads[1] != 2 {
		t.Errorf("Loads(1) = %v, want [2 2] in time order", loads)
	}
}

func TestParamsWithDefaults(t *testing.T) {
	p := Params{Decay: 1.5, BucketMs: 250}.WithDefaults()
	if p.BucketMs != 250 {
		t.Errorf("BucketMs overridden: %v", p.BucketMs)
	}
	if p.Decay != 0.99 || p.MinGapMs != 25 || p.Exponent != 1.1 {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestEffectOf(t *testing.T) {
	if e := EffectOf(nil); e != neutral {
		t.Errorf("EffectOf(nil) = %+v", e)
	}
	e := EffectOf(combo.NewMods("HR", "HD", "XX"))
	if math.Abs(e.Aim-1.12*1.05) > 1e-12 || e.Density != 1 {
		t.Errorf("EffectOf(HD+HR) = %+v", e)
	}
	if !Known("HR") || Known("XX") {
		t.Error("Known() wrong")
	}
	if !Known("NF") || !Known("MR") {
		t.Error("NF and MR should be recognised")
	}
	if e := EffectOf(combo.NewMods("NF", "MR")); e != neutral {
		t.Errorf("EffectOf(MR+NF) = %+v, want neutral", e)
	}
}

func TestInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Interrupted(ctx, 1); err != nil {
		t.Error("Interrupted should only check every checkEvery iterations")
	}
	if err := Interrupted(ctx, checkEvery); err == nil {
		t.Error("expected cancellation error")
	}
}
