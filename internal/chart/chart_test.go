package chart

import (
	"reflect"
	"strings"
	"testing"
)

func TestBars(t *testing.T) {
	out := string(Bars([]Bar{{"fed", 4}, {"<oil>", 2}}, "%.0f"))
	if !strings.HasPrefix(out, `<div class="chart"><svg`) || !strings.HasSuffix(out, "</svg></div>") {
		t.Fatalf("expected svg element, got %s", out)
	}
	if !strings.Contains(out, ">fed<") || !strings.Contains(out, "&lt;oil&gt;") {
		t.Errorf("expected escaped bar labels, got %s", out)
	}
	if strings.Contains(out, "<oil>") {
		t.Error("label markup must be escaped")
	}
}

func TestBarsEqualValues(t *testing.T) {
	out := string(Bars([]Bar{{"banks", 2}, {"rates", 2}}, "%.0f"))
	if !strings.Contains(out, "<svg") {
		t.Errorf("expected a chart for equal values, got %s", out)
	}
}

func TestBarsEmpty(t *testing.T) {
	if got := string(Bars(nil, "%v")); !strings.Contains(got, "No data") {
		t.Errorf("expected placeholder, got %s", got)
	}
	if got := string(Bars([]Bar{{"x", 0}}, "%v")); !strings.Contains(got, "No data") {
		t.Errorf("expected placeholder for all-zero bars, got %s", got)
	}
}

func TestSortedBars(t *testing.T) {
	in := []Bar{{"b", 1}, {"a", 1}, {"c", 3}}
	got := SortedBars(in)
	want := []Bar{{"c", 3}, {"a", 1}, {"b", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if in[0].Label != "b" {
		t.Error("expected input to be left unchanged")
	}
}

func TestStacked(t *testing.T) {
	out := string(Stacked([]Bar{{"negative", 3}, {"positive", 1}, {"litigious", 0}}))
	if !strings.Contains(out, "negative 75.0%") || !strings.Contains(out, "positive 25.0%") {
		t.Errorf("expected proportional segment labels, got %s", out)
	}
	if strings.Contains(out, "litigious") {
		t.Error("expected empty parts to be left out")
	}
	if got := string(Stacked([]Bar{{"x", 0}})); !strings.Contains(got, "No data") {
		t.Errorf("expected placeholder for all-zero parts, got %s", got)
	}
}

func TestLine(t *testing.T) {
	labels := []string{"2026-02-04", "2026-02-05", "2026-02-06"}
	out := string(Line(labels, []Series{
		{Name: "polarity", Values: []float64{0.1, -0.2, 0.3}},
		{Name: "flat", Values: []float64{0, 0, 0}},
	}))
	if !strings.Contains(out, "<svg") {
		t.Fatalf("expected svg element, got %s", out)
	}
	for _, want := range []string{">polarity<", ">flat<", "2026-02-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in chart", want)
		}
	}
	if got := string(Line(nil, nil)); !strings.Contains(got, "No data") {
		t.Errorf("expected placeholder, got %s", got)
	}
}

func TestLineSinglePoint(t *testing.T) {
	out := string(Line([]string{"2026-02-06"}, []Series{{Name: "mean polarity", Values: []float64{0.2}}}))
	if !strings.Contains(out, "<svg") {
		t.Errorf("expected a chart for one day, got %s", out)
	}
}

func TestTickIndexes(t *testing.T) {
	if got := tickIndexes(3, 6); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("unexpected ticks %v", got)
	}
	got := tickIndexes(31, 6)
	if len(got) != 6 || got[0] != 0 || got[5] != 30 {
		t.Errorf("unexpected ticks %v", got)
	}
}
