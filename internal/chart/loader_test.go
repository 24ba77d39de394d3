package chart

import (
	"errors"
	"path/filepath"
	"testing"
)

func testdataPath() string {
	return filepath.Join("testdata", "pack")
}

func TestLoaderLoadAll(t *testing.T) {
	var failed []string
	loader := NewLoader(testdataPath())
	loader.OnError = func(path string, err error) {
		failed = append(failed, filepath.Base(path))
	}

	charts, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(charts) != 3 {
		t.Fatalf("expected 3 charts, got %d", len(charts))
	}
	if len(failed) != 1 || failed[0] != "broken.chart.yaml" {
		t.Errorf("expected broken.chart.yaml to be reported, got %v", failed)
	}

	wantOrder := []string{"Silence", "Jump Training", "Stream Practice"}
	for i, title := range wantOrder {
		if charts[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, charts[i].Title, title)
		}
	}
}

func TestLoadFileStandard(t *testing.T) {
	b, err := LoadFile(filepath.Join(testdataPath(), "jumps.chart.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if b.Mode != ModeStandard {
		t.Errorf("Mode = %q, want standard", b.Mode)
	}
	if len(b.Hash) != 64 {
		t.Errorf("expected hex sha256 hash, got %q", b.Hash)
	}
	if len(b.TimingPoints) != 2 || !b.TimingPoints[1].Kiai {
		t.Errorf("unexpected timing points: %v", b.TimingPoints)
	}
	if len(b.Objects) != 7 {
		t.Fatalf("expected 7 objects, got %d", len(b.Objects))
	}

	slider := b.Objects[4]
	if slider.Kind != KindSlider || slider.Slides != 2 || slider.EndX != 356 {
		t.Errorf("slider decoded wrong: %+v", slider)
	}
	if b.Objects[0].Slides != 1 {
		t.Errorf("slides should default to 1, got %d", b.Objects[0].Slides)
	}
	if b.Name() != "Test Artist - Jump Training [Insane]" {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestParseDefaults(t *testing.T) {
	b, err := Parse([]byte("title: x\ntiming:\n  - {time: 0, beat_length: 500}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if b.Mode != ModeStandard || b.SliderMultiplier != 1.4 || b.ScrollSpeed != 1 {
		t.Errorf("defaults not applied: %+v", b)
	}
}

func TestParseRejectsZeroBeatLength(t *testing.T) {
	_, err := Parse([]byte("timing:\n  - {time: 0, beat_length: 0}\n"))
	if err == nil {
		t.Error("expected error for zero beat length")
	}
}

func TestParseSortsObjects(t *testing.T) {
	b, err := Parse([]byte("objects:\n  - {time: 300}\n  - {time: 100}\n  - {time: 200}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i := 1; i < len(b.Objects); i++ {
		if b.Objects[i].Time < b.Objects[i-1].Time {
			t.Fatalf("objects not sorted: %v", b.Objects)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	orig, err := LoadFile(filepath.Join(testdataPath(), "stream.chart.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	data, err := Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if back.Mode != orig.Mode || back.Columns != orig.Columns || len(back.Objects) != len(orig.Objects) {
		t.Errorf("round trip changed chart: %+v", back)
	}
	if back.Objects[5].Kind != KindHold || back.Objects[5].EndTime != 600 {
		t.Errorf("hold note lost: %+v", back.Objects[5])
	}
}

func TestLoaderBeatmapReference(t *testing.T) {
	loader := NewLoader(testdataPath())

	byPath, err := loader.Beatmap("stream.chart.yaml")
	if err != nil {
		t.Fatalf("Beatmap(path) failed: %v", err)
	}

	byHash, err := loader.Beatmap(byPath.ShortHash())
	if err != nil {
		t.Fatalf("Beatmap(hash) failed: %v", err)
	}
	if byHash.Hash != byPath.Hash {
		t.Errorf("hash lookup returned %s, want %s", byHash.Hash, byPath.Hash)
	}

	if _, err := loader.Beatmap("ffffffffffffffff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoaderMissingRoot(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing"))
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestIsChartFile(t *testing.T) {
	cases := map[string]bool{
		"a.chart.yaml":      true,
		"dir/B.CHART.YML":   true,
		"a.yaml":            false,
		"chart.yaml.backup": false,
	}
	for path, want := range cases {
		if got := IsChartFile(path); got != want {
			t.Errorf("IsChartFile(%q) = %v, want %v", path, got, want)
		}
	}
}
