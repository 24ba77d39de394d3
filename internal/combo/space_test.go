package combo

import "testing"

func TestSpaceScenario(t *testing.T) {
	s := New([]Mods{{}}, 50, 1000, 5)

	all := s.All()
	if len(all) != 191 {
		t.Fatalf("expected 191 combinations, got %d", len(all))
	}
	if s.Count() != 191 {
		t.Errorf("Count() = %d, want 191", s.Count())
	}

	for i, c := range all {
		if len(c.Mods) != 0 {
			t.Errorf("combination %d has mods %v, want none", i, c.Mods)
		}
		if i > 0 && c.Speed <= all[i-1].Speed {
			t.Errorf("speeds not strictly ascending at %d: %d after %d", i, c.Speed, all[i-1].Speed)
		}
	}
	if all[0].Speed != 50 || all[len(all)-1].Speed != 1000 {
		t.Errorf("range = %d..%d, want 50..1000", all[0].Speed, all[len(all)-1].Speed)
	}
}

func TestSpaceDeterminism(t *testing.T) {
	sets := []Mods{{}, NewMods("HR"), NewMods("HD", "HR")}
	a := New(sets, 50, 200, 25).All()
	b := New(sets, 50, 200, 25).All()

	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Signature() != b[i].Signature() {
			t.Errorf("combination %d differs: %s vs %s", i, a[i].Signature(), b[i].Signature())
		}
	}
}

func TestSpaceOrder(t *testing.T) {
	sets := []Mods{NewMods("HR"), {}}
	got := New(sets, 100, 150, 50).All()

	want := []string{"HR@100", "NM@100", "HR@150", "NM@150"}
	if len(got) != len(want) {
		t.Fatalf("got %d combinations, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Signature() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i].Signature(), want[i])
		}
	}
}

func TestIteratorExhaustion(t *testing.T) {
	it := New(nil, 100, 100, 10).Iter()

	if _, ok := it.Next(); !ok {
		t.Fatal("expected one combination")
	}
	for i := 0; i < 3; i++ {
		if _, ok := it.Next(); ok {
			t.Error("Next after exhaustion must keep returning false")
		}
	}

	it.Reset()
	if c, ok := it.Next(); !ok || c.Speed != 100 {
		t.Errorf("Reset did not restart iteration: %v %v", c, ok)
	}
}

func TestSpaceEdgeRanges(t *testing.T) {
	if n := New(nil, 200, 100, 10).Count(); n != 0 {
		t.Errorf("min > max should be empty, got %d", n)
	}
	if n := New(nil, 120, 500, 0).Count(); n != 1 {
		t.Errorf("zero step should yield one speed, got %d", n)
	}
	// Range not divisible by step stops before max.
	all := New(nil, 100, 130, 20).All()
	if len(all) != 2 || all[1].Speed != 120 {
		t.Errorf("unexpected combinations: %v", all)
	}
	// The top of the uint16 range must not wrap.
	all = New(nil, 65500, 65535, 10).All()
	if len(all) != 4 || all[3].Speed != 65530 {
		t.Errorf("unexpected combinations near uint16 max: %v", all)
	}
}

func TestModsCanonical(t *testing.T) {
	m := NewMods("hr", "HD", " hr ", "", "NM")
	if m.String() != "HD+HR" {
		t.Errorf("canonical form = %q, want HD+HR", m.String())
	}
	if !m.Has("hd") || m.Has("EZ") {
		t.Errorf("Has() wrong for %v", m)
	}
	if !m.Equal(NewMods("HR", "HD")) {
		t.Error("equal sets compare unequal")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	for _, c := range []Combination{
		{Speed: 100},
		{Speed: 150, Mods: NewMods("HR", "HD")},
		{Speed: 5, Mods: NewMods("EZ")},
	} {
		got, err := ParseSignature(c.Signature())
		if err != nil {
			t.Fatalf("ParseSignature(%q) failed: %v", c.Signature(), err)
		}
		if got.Speed != c.Speed || !got.Mods.Equal(c.Mods) {
			t.Errorf("round trip of %q gave %v", c.Signature(), got)
		}
	}

	for _, bad := range []string{"", "HR", "HR@fast", "HR@70000"} {
		if _, err := ParseSignature(bad); err == nil {
			t.Errorf("ParseSignature(%q) should fail", bad)
		}
	}
}

func TestCombinationString(t *testing.T) {
	c := Combination{Speed: 105, Mods: NewMods("HD")}
	if c.String() != "HD 1.05x" {
		t.Errorf("String() = %q", c.String())
	}
	if c.Rate() != 1.05 {
		t.Errorf("Rate() = %v", c.Rate())
	}
}

func TestNewDropsDuplicateSets(t *testing.T) {
	s := New([]Mods{{"HD", "HR"}, {}, {"hr", "HD"}, {"NM"}}, 100, 150, 50)

	if len(s.Sets()) != 2 {
		t.Fatalf("Sets() = %v, want [HD+HR NM]", s.Sets())
	}
	if s.Count() != 4 {
		t.Errorf("Count() = %d, want 4", s.Count())
	}

	seen := make(map[string]bool)
	for _, c := range s.All() {
		if seen[c.Signature()] {
			t.Errorf("signature %q enumerated twice", c.Signature())
		}
		seen[c.Signature()] = true
	}
	if !s.Sets()[0].Equal(NewMods("HD", "HR")) {
		t.Errorf("first occurrence should keep its position, got %v", s.Sets())
	}
}
