// Package charts builds Plotly figure payloads for the dashboard.
// Figures serialize to the JSON shape plotly.js consumes directly, so
// the browser side stays a thin render loop.
package charts

import (
	"fmt"

	"github.com/annoflow/annoflow/internal/model"
	"github.com/annoflow/annoflow/pkg/reporting"
)

// MaxFeaturesPerType caps the feature bars shown per drill-down so a
// high-cardinality feature cannot flood the figure.
const MaxFeaturesPerType = 30

// Figure is a plotly.js figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the pie, bar, and indicator shapes the dashboard uses.
type Trace struct {
	Type         string    `json:"type"`
	Labels       []string  `json:"labels,omitempty"`
	Values       []int     `json:"values,omitempty"`
	X            []int     `json:"x,omitempty"`
	Y            []string  `json:"y,omitempty"`
	Text         []string  `json:"text,omitempty"`
	TextPosition string    `json:"textposition,omitempty"`
	TextInfo     string    `json:"textinfo,omitempty"`
	HoverInfo    string    `json:"hoverinfo,omitempty"`
	Name         string    `json:"name,omitempty"`
	Orientation  string    `json:"orientation,omitempty"`
	Hole         float64   `json:"hole,omitempty"`
	Sort         *bool     `json:"sort,omitempty"`
	Visible      *bool     `json:"visible,omitempty"`
	Value        *float64  `json:"value,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Gauge        *Gauge    `json:"gauge,omitempty"`
	Number       *Number   `json:"number,omitempty"`
}

// Gauge configures an indicator trace's dial.
type Gauge struct {
	Axis GaugeAxis `json:"axis"`
}

// GaugeAxis bounds the dial.
type GaugeAxis struct {
	Range []float64 `json:"range"`
}

// Number formats an indicator's numeric readout.
type Number struct {
	Suffix string `json:"suffix,omitempty"`
}

// Layout holds the subset of plotly layout the dashboard sets.
type Layout struct {
	Title       Title        `json:"title"`
	BarMode     string       `json:"barmode,omitempty"`
	Height      int          `json:"height,omitempty"`
	XAxis       *AxisTitle   `json:"xaxis,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Title is a plotly layout title.
type Title struct {
	Text string `json:"text"`
}

// AxisTitle names an axis.
type AxisTitle struct {
	Title Title `json:"title"`
}

// Annotation places free text on the figure.
type Annotation struct {
	Text      string `json:"text"`
	ShowArrow bool   `json:"showarrow"`
}

// UpdateMenu is a plotly dropdown switching trace visibility.
type UpdateMenu struct {
	Buttons    []Button `json:"buttons"`
	Direction  string   `json:"direction,omitempty"`
	ShowActive bool     `json:"showactive"`
}

// Button is one dropdown entry. Args follows plotly's update method
// convention: a restyle object, optionally followed by a relayout one.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

// stateSeries orders category counts along the document workflow.
func stateSeries(categories map[string]int) (labels []string, values []int) {
	for _, state := range model.DocumentStates {
		labels = append(labels, state.Label())
		values = append(values, categories[string(state)])
	}
	return labels, values
}

// DocumentStatusFigure builds the workflow-state donut with a
// documents/tokens toggle.
func DocumentStatusFigure(summary *model.ProjectSummary) Figure {
	docLabels, docValues := stateSeries(summary.DocCategories)
	tokenLabels, tokenValues := stateSeries(summary.TokenCategories)

	donut := func(labels []string, values []int, visible bool) Trace {
		return Trace{
			Type:      "pie",
			Labels:    labels,
			Values:    values,
			Sort:      boolPtr(false),
			Hole:      0.4,
			HoverInfo: "percent+label",
			TextInfo:  "value",
			Visible:   boolPtr(visible),
		}
	}

	return Figure{
		Data: []Trace{
			donut(docLabels, docValues, true),
			donut(tokenLabels, tokenValues, false),
		},
		Layout: Layout{
			Title: Title{Text: "Documents Status"},
			UpdateMenus: []UpdateMenu{{
				Direction:  "down",
				ShowActive: true,
				Buttons: []Button{
					{
						Label:  "Documents",
						Method: "update",
						Args: []any{
							map[string]any{"visible": []bool{true, false}},
							map[string]any{"title": "Documents Status"},
						},
					},
					{
						Label:  "Tokens",
						Method: "update",
						Args: []any{
							map[string]any{"visible": []bool{false, true}},
							map[string]any{"title": "Tokens Status"},
						},
					},
				},
			}},
		},
	}
}

// AnnotationBreakdownFigure builds the horizontal per-type bar chart.
// Types with at least two feature values get a drill-down button that
// swaps the overview bars for that type's feature bars.
func AnnotationBreakdownFigure(counts reporting.AggregatedTypeCounts, curatedOnly bool) Figure {
	var traces []Trace
	mainTraces := len(counts)

	for _, typeCount := range counts {
		traces = append(traces, Trace{
			Type:         "bar",
			Y:            []string{typeCount.Name},
			X:            []int{typeCount.Total},
			Text:         []string{fmt.Sprint(typeCount.Total)},
			TextPosition: "auto",
			Name:         typeCount.Name,
			Orientation:  "h",
			HoverInfo:    "x+y",
			Visible:      boolPtr(true),
		})
	}

	var featureButtons []Button
	featureTraces := 0
	for _, typeCount := range counts {
		if len(typeCount.Features) < 2 {
			continue
		}
		features := typeCount.Features
		if len(features) > MaxFeaturesPerType {
			features = features[:MaxFeaturesPerType]
		}

		start := featureTraces
		for _, feature := range features {
			traces = append(traces, Trace{
				Type:         "bar",
				Y:            []string{feature.Value},
				X:            []int{feature.Total},
				Text:         []string{fmt.Sprint(feature.Total)},
				TextPosition: "auto",
				Name:         feature.Value,
				Orientation:  "h",
				HoverInfo:    "x+y",
				Visible:      boolPtr(false),
			})
			featureTraces++
		}

		featureButtons = append(featureButtons, Button{
			Label:  typeCount.Name,
			Method: "update",
			Args:   []any{map[string]any{"visible": drillDownVisibility(mainTraces, featureTraces, start)}},
		})
	}

	// Drill-down buttons were built against growing trace counts; pad
	// each visibility slice to the final length.
	for i := range featureButtons {
		visible := featureButtons[i].Args[0].(map[string]any)["visible"].([]bool)
		for len(visible) < mainTraces+featureTraces {
			visible = append(visible, false)
		}
		featureButtons[i].Args[0].(map[string]any)["visible"] = visible
	}

	overview := make([]bool, mainTraces+featureTraces)
	for i := 0; i < mainTraces; i++ {
		overview[i] = true
	}

	title := "Types of Annotations (All Docs)"
	if curatedOnly {
		title = "Types of Annotations (Curated Docs)"
	}

	height := 160 * len(counts)
	if height > 500 {
		height = 500
	}
	if height < 200 {
		height = 200
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:   Title{Text: title},
			BarMode: "overlay",
			Height:  height,
			XAxis:   &AxisTitle{Title: Title{Text: "Number of Annotations"}},
			UpdateMenus: []UpdateMenu{{
				Direction:  "down",
				ShowActive: true,
				Buttons: append([]Button{{
					Label:  "Overview",
					Method: "update",
					Args:   []any{map[string]any{"visible": overview}},
				}}, featureButtons...),
			}},
		},
	}
}

func drillDownVisibility(mainTraces, featureTraces, start int) []bool {
	visible := make([]bool, mainTraces+featureTraces)
	for i := start; i < featureTraces; i++ {
		visible[mainTraces+i] = true
	}
	return visible
}

// ProgressFigure renders completion as a gauge. When the remaining
// time projection is unavailable it says so instead of showing zero.
func ProgressFigure(progress model.Progress) Figure {
	figure := Figure{
		Data: []Trace{{
			Type:   "indicator",
			Mode:   "gauge+number",
			Value:  floatPtr(progress.PercentComplete),
			Number: &Number{Suffix: "%"},
			Gauge:  &Gauge{Axis: GaugeAxis{Range: []float64{0, 100}}},
		}},
		Layout: Layout{Title: Title{Text: "Project Progress"}},
	}

	text := "insufficient data for a remaining-time estimate"
	if progress.Available {
		hours := progress.EstimatedRemainingSeconds / 3600
		text = fmt.Sprintf("estimated remaining effort: %.1f h", hours)
	}
	figure.Layout.Annotations = []Annotation{{Text: text}}
	return figure
}

// RollupFigure shows one tag group's combined document states and
// per-project membership.
func RollupFigure(rollup reporting.Rollup) Figure {
	labels, values := stateSeries(rollup.DocCategories)
	figure := Figure{
		Data: []Trace{{
			Type:      "pie",
			Labels:    labels,
			Values:    values,
			Sort:      boolPtr(false),
			Hole:      0.4,
			HoverInfo: "percent+label",
			TextInfo:  "value",
		}},
		Layout: Layout{
			Title: Title{Text: fmt.Sprintf("%s (%d projects, %.0f%% complete)",
				rollup.Tag, len(rollup.Projects), rollup.Progress.PercentComplete)},
		},
	}
	return figure
}
