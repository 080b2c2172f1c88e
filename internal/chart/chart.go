// Package chart renders the dashboard's inline SVG charts with go-chart.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"log"
	"math"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	width       = 720
	height      = 300
	stackHeight = 140
	maxLabel    = 18
	maxXTicks   = 6
)

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// Series is a named line over the shared x labels.
type Series struct {
	Name   string
	Values []float64
}

// Bars draws one column per bar in the given order. format is applied to the
// y-axis labels. Negative values are drawn as zero.
func Bars(bars []Bar, format string) template.HTML {
	if len(bars) == 0 {
		return empty()
	}
	maxV := 0.0
	values := make([]gochart.Value, len(bars))
	for i, b := range bars {
		v := math.Max(b.Value, 0)
		maxV = math.Max(maxV, v)
		values[i] = gochart.Value{Label: label(b.Label), Value: v}
	}
	if maxV == 0 {
		return empty()
	}

	bc := gochart.BarChart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 10, Right: 10, Bottom: 10},
		},
		BarSpacing: 12,
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: maxV},
			ValueFormatter: formatter(format),
		},
		Bars: values,
	}
	return render(bc.Render)
}

// SortedBars returns a copy of bars ordered by value descending, then label.
func SortedBars(bars []Bar) []Bar {
	out := append([]Bar(nil), bars...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Stacked draws one 100% bar split proportionally between the positive parts.
// Each segment is labelled with its share.
func Stacked(parts []Bar) template.HTML {
	total := 0.0
	for _, p := range parts {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total == 0 {
		return empty()
	}

	var values []gochart.Value
	for _, p := range parts {
		if p.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %.1f%%", label(p.Label), p.Value/total*100),
			Value: p.Value,
		})
	}

	sbc := gochart.StackedBarChart{
		Width:        width,
		Height:       stackHeight,
		IsHorizontal: true,
		BarSpacing:   10,
		YAxis:        gochart.Hidden(),
		Bars:         []gochart.StackedBar{{Width: 50, Values: values}},
	}
	return render(sbc.Render)
}

// Line draws each series over labels, with a legend. Values past the last
// label are ignored.
func Line(labels []string, series []Series) template.HTML {
	if len(labels) == 0 {
		return empty()
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var lines []gochart.Series
	for _, s := range series {
		n := min(len(s.Values), len(labels))
		if n == 0 {
			continue
		}
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = float64(i)
			lo = math.Min(lo, s.Values[i])
			hi = math.Max(hi, s.Values[i])
		}
		lines = append(lines, gochart.ContinuousSeries{
			Name:    html.EscapeString(s.Name),
			Style:   gochart.Style{StrokeWidth: 2, DotWidth: 3},
			XValues: xs,
			YValues: s.Values[:n],
		})
	}
	if len(lines) == 0 {
		return empty()
	}
	if hi == lo {
		pad := math.Max(math.Abs(hi)*0.1, 0.1)
		lo, hi = lo-pad, hi+pad
	}

	var ticks []gochart.Tick
	for _, i := range tickIndexes(len(labels), maxXTicks) {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: html.EscapeString(labels[i])})
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 10, Right: 30, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(float64(len(labels)-1), 1)},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: formatter("%.2f"),
		},
		Series: lines,
	}
	graph.Elements = []gochart.Renderable{gochart.LegendThin(&graph)}
	return render(graph.Render)
}

// tickIndexes picks at most n evenly spaced indexes out of count, always
// including the first and last.
func tickIndexes(count, n int) []int {
	if count <= n {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, k*(count-1)/(n-1))
	}
	return out
}

func render(fn func(gochart.RendererProvider, io.Writer) error) template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<div class="chart">`)
	if err := fn(gochart.SVG, &buf); err != nil {
		log.Printf("Error rendering chart: %v", err)
		return empty()
	}
	buf.WriteString(`</div>`)
	return template.HTML(buf.String()) //nolint: gosec
}

func formatter(format string) gochart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf(format, f)
		}
		return ""
	}
}

// label shortens s and escapes it for SVG text, which go-chart writes verbatim.
func label(s string) string {
	r := []rune(s)
	if len(r) > maxLabel {
		s = string(r[:maxLabel-1]) + "…"
	}
	return html.EscapeString(s)
}

func empty() template.HTML {
	return template.HTML(`<p class="muted">No data.</p>`)
}
