package normalize

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2021-09-01",
		"09/01/2021",
		"9/1/2021",
		"9/1/21",
		"September 1, 2021",
		"Sep 1, 2021",
		" 2021-09-01 ",
		"2021-09-01T13:45:00",
		"44440",
	} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "soon", "13/45/2021", "12"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2021, 9, 15, 18, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 14 {
		t.Errorf("DaysBetween = %d, want 14", got)
	}
	if got := DaysBetween(b, a); got != -14 {
		t.Errorf("DaysBetween reversed = %d, want -14", got)
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"Lincoln\nHigh":            "Lincoln High",
		"  Kailua \r\n High  ":     "Kailua High",
		"Waipahu\n\nIntermediate": "Waipahu Intermediate",
		"Kailua High  12345":       "Kailua High  12345",
	}
	for in, want := range tests {
		if got := CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripSpillover(t *testing.T) {
	got, ok := StripSpillover("Kailua High  12345")
	if !ok || got != "Kailua High" {
		t.Errorf("StripSpillover = %q, %v; want Kailua High, true", got, ok)
	}

	for _, in := range []string{"Kailua High 12345", "Kailua High", "Ka'u High  12", "Kailua  High"} {
		if got, ok := StripSpillover(in); ok || got != in {
			t.Errorf("StripSpillover(%q) = %q, %v; want unchanged", in, got, ok)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("A\n B \r\n\nC")
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("SplitLines = %q", got)
	}
}

func TestParseCount(t *testing.T) {
	for in, want := range map[string]int{"1": 1, " 12 ": 12, "3.0": 3} {
		got, err := ParseCount(in)
		if err != nil || got != want {
			t.Errorf("ParseCount(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "two", "1.5", "0", "-2"} {
		if _, err := ParseCount(in); err == nil {
			t.Errorf("ParseCount(%q): expected error", in)
		}
	}
}

func TestParseFlag(t *testing.T) {
	yes, no, blank := "TRUE", "FALSE", ""
	if !ParseFlag(&yes) || ParseFlag(&no) || ParseFlag(&blank) || ParseFlag(nil) {
		t.Error("ParseFlag returned an unexpected value")
	}
}

func TestRoundHalfUp(t *testing.T) {
	for in, want := range map[float64]int{0: 0, 2.5: 3, 2.49: 2, 1.0 / 7: 0, 4.0 / 7: 1} {
		if got := RoundHalfUp(in); got != want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestRegionKey(t *testing.T) {
	if RegionKey("  Kailua-Kalaheo ") != RegionKey("kailua-kalaheo") {
		t.Error("RegionKey should ignore case and surrounding space")
	}
	if RegionKey("Farrington  Kaiser") != "FARRINGTON KAISER" {
		t.Errorf("RegionKey = %q", RegionKey("Farrington  Kaiser"))
	}
}

func TestOptInt(t *testing.T) {
	if v := OptInt("1234.0"); v == nil || *v != 1234 {
		t.Errorf("OptInt = %v", v)
	}
	if OptInt("") != nil || OptInt("n/a") != nil {
		t.Error("blank or non-numeric input should be nil")
	}
}

func TestContentHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
}
