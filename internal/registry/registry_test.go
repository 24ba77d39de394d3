package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
)

type constAnalyzer struct{ mode string }

func (a constAnalyzer) Mode() string { return a.mode }
func (a constAnalyzer) Events() int  { return 1 }
func (a constAnalyzer) Score(ctx context.Context, c combo.Combination) (float32, error) {
	return float32(c.Speed), nil
}

func register(t *testing.T, info Info) {
	t.Helper()
	Register(info, func(b *chart.Beatmap, p difficulty.Params) (difficulty.Analyzer, error) {
		if p.BucketMs <= 0 {
			return nil, errors.New("params not defaulted")
		}
		return constAnalyzer{mode: info.Mode}, nil
	})
	t.Cleanup(func() { unregister(info.Mode) })
}

func TestRegisterAndBuild(t *testing.T) {
	register(t, Info{Mode: "test-a", Title: "Test A"})

	if !Exists("test-a") {
		t.Fatal("registered mode does not exist")
	}
	a, err := Build("test-a", &chart.Beatmap{}, difficulty.Params{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Mode() != "test-a" {
		t.Errorf("Mode() = %q", a.Mode())
	}
}

func TestBuildUnknownMode(t *testing.T) {
	_, err := Build("no-such-mode", &chart.Beatmap{}, difficulty.Params{})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	register(t, Info{Mode: "test-dup"})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(Info{Mode: "test-dup"}, nil)
}

func TestListSorted(t *testing.T) {
	register(t, Info{Mode: "test-z"})
	register(t, Info{Mode: "test-b"})

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Mode >= list[i].Mode {
			t.Errorf("list not sorted: %s >= %s", list[i-1].Mode, list[i].Mode)
		}
	}
}

func TestSupports(t *testing.T) {
	register(t, Info{Mode: "test-keys", Converts: []string{"test-circles"}})

	cases := []struct {
		chartMode string
		want      bool
	}{
		{"test-keys", true},
		{"test-circles", true},
		{"test-drums", false},
	}
	for _, c := range cases {
		if got := Supports("test-keys", &chart.Beatmap{Mode: c.chartMode}); got != c.want {
			t.Errorf("Supports(test-keys, %s) = %v, want %v", c.chartMode, got, c.want)
		}
	}
	if Supports("missing", &chart.Beatmap{Mode: "missing"}) {
		t.Error("unregistered mode must not support anything")
	}
}
