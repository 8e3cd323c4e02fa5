// Package plot projects dataset columns into Plotly-compatible figures.
package plot

import (
	"fmt"

	"github.com/KaramelBytes/tabsight/internal/dataset"
)

// Marker styles scatter points.
type Marker struct {
	Size    int     `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Trace is one Plotly data series.
type Trace struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Type   string    `json:"type"`
	Mode   string    `json:"mode"`
	Name   string    `json:"name"`
	Marker *Marker   `json:"marker,omitempty"`
}

// Axis is a Plotly axis definition.
type Axis struct {
	Title     string `json:"title"`
	GridColor string `json:"gridcolor"`
}

// Margin is the plot area margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Font sets the figure font family.
type Font struct {
	Family string `json:"family"`
}

// Layout is the Plotly layout object.
type Layout struct {
	Autosize     bool   `json:"autosize"`
	Title        string `json:"title"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Font         Font   `json:"font"`
	Margin       Margin `json:"margin"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
}

// Figure is a complete document accepted by Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

const (
	markerColor = "#4f46e5"
	background  = "rgba(248, 250, 252, 0.85)"
	gridColor   = "#e5e7eb"
)

// CreateScatterPlot pairs the x and y columns index by index up to the longer
// of the two and keeps only rows where both sides coerce to numbers. It
// returns no traces when a column is unset or no pair survives.
func CreateScatterPlot(ds *dataset.Dataset, x, y string, c dataset.Coercion) []Trace {
	if ds == nil || x == "" || y == "" {
		return []Trace{}
	}
	xs, _ := ds.Column(x)
	ys, _ := ds.Column(y)
	n := max(len(xs), len(ys))
	tr := Trace{
		X:      []float64{},
		Y:      []float64{},
		Type:   "scatter",
		Mode:   "markers",
		Name:   fmt.Sprintf("%s vs %s", x, y),
		Marker: &Marker{Size: 8, Color: markerColor, Opacity: 0.7},
	}
	for i := 0; i < n; i++ {
		xv, okx := c.ToNumeric(dataset.At(xs, i))
		yv, oky := c.ToNumeric(dataset.At(ys, i))
		if okx && oky {
			tr.X = append(tr.X, xv)
			tr.Y = append(tr.Y, yv)
		}
	}
	if len(tr.X) == 0 {
		return []Trace{}
	}
	return []Trace{tr}
}

// CreateLinePlot draws every column holding at least one number as a line
// against its 1-based row index. Rows that do not coerce are skipped.
func CreateLinePlot(ds *dataset.Dataset, c dataset.Coercion) []Trace {
	out := []Trace{}
	for _, col := range ds.Columns() {
		tr := Trace{X: []float64{}, Y: []float64{}, Type: "scatter", Mode: "lines", Name: col.Name}
		for i, v := range col.Values {
			if f, ok := c.ToNumeric(v); ok {
				tr.X = append(tr.X, float64(i+1))
				tr.Y = append(tr.Y, f)
			}
		}
		if len(tr.X) > 0 {
			out = append(out, tr)
		}
	}
	return out
}

// CreateLayout titles the figure after the chosen axes, falling back to
// generic labels when either axis is unset.
func CreateLayout(x, y string) Layout {
	hasAxis := x != "" && y != ""
	l := Layout{
		Autosize:     true,
		Title:        "Scatter plot",
		PaperBGColor: background,
		PlotBGColor:  background,
		Font:         Font{Family: "'Inter', system-ui"},
		Margin:       Margin{L: 50, R: 30, T: 80, B: 50},
		XAxis:        Axis{Title: "X axis", GridColor: gridColor},
		YAxis:        Axis{Title: "Y axis", GridColor: gridColor},
	}
	if hasAxis {
		l.Title = fmt.Sprintf("%s vs %s scatter plot", x, y)
		l.XAxis.Title = x
		l.YAxis.Title = y
	}
	return l
}

// Scatter builds the scatter figure for x against y.
func Scatter(ds *dataset.Dataset, x, y string, c dataset.Coercion) Figure {
	return Figure{Data: CreateScatterPlot(ds, x, y, c), Layout: CreateLayout(x, y)}
}

// Lines builds the figure of all numeric columns against row index.
func Lines(ds *dataset.Dataset, c dataset.Coercion) Figure {
	l := CreateLayout("", "")
	l.Title = "Numeric columns"
	l.XAxis.Title = "Row"
	l.YAxis.Title = "Value"
	return Figure{Data: CreateLinePlot(ds, c), Layout: l}
}
