package gifhtml

import (
	"strings"
	"testing"

	"github.com/ordforge/ordforge/internal/store"
)

func TestBuild(t *testing.T) {
	frames := []store.Frame{
		{Inscription: "aaaa1111i0", Duration: 120},
		{Inscription: "bbbb2222i0", Duration: 340},
	}

	html := Build("7.gif", frames)

	if !strings.Contains(html, "<title>7.gif</title>") {
		t.Error("title missing")
	}
	for _, f := range frames {
		want := "<img class=grid-item src=/content/" + f.Inscription + ">"
		if !strings.Contains(html, want) {
			t.Errorf("missing frame tag %q", want)
		}
	}
	if !strings.Contains(html, "n=[120,340]") {
		t.Error("durations array missing or wrong")
	}
	// Frames must appear in order: playback indexes into the durations
	// array by DOM position.
	if strings.Index(html, "aaaa1111i0") > strings.Index(html, "bbbb2222i0") {
		t.Error("frames out of order")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	frames := []store.Frame{{Inscription: "ci0", Duration: 100}}
	if Build("x.gif", frames) != Build("x.gif", frames) {
		t.Error("output not deterministic")
	}
}

func TestEstimateSize(t *testing.T) {
	one := EstimateSize(1)
	five := EstimateSize(5)
	if one <= 0 {
		t.Fatalf("EstimateSize(1) = %d, want positive", one)
	}
	if five <= one {
		t.Errorf("EstimateSize(5) = %d, want more than EstimateSize(1) = %d", five, one)
	}

	// The projection must match what Build actually produces for the
	// placeholder inputs, since it feeds the price quote.
	frames := make([]store.Frame, 3)
	for i := range frames {
		frames[i] = store.Frame{Inscription: "tx_idi0", Duration: 19999}
	}
	if got := int64(len(Build("image.gif", frames))); got != EstimateSize(3) {
		t.Errorf("EstimateSize(3) = %d, want %d", EstimateSize(3), got)
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL("<html></html>")
	want := "data:text/html;base64,PGh0bWw+PC9odG1sPg=="
	if got != want {
		t.Errorf("DataURL() = %s, want %s", got, want)
	}
}

func TestHashFile(t *testing.T) {
	// SHA-256 test vector for "abc".
	got := HashFile("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashFile(abc) = %s, want %s", got, want)
	}
}
