package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"perf-graphs/internal/domain"
)

const XAxisLabel = "Time Offset (ms)"

// seriesColors follow the add, update, delete order.
var seriesColors = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
}

var (
	gridColor        = drawing.ColorFromHex("d9d9d9")
	placeholderColor = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

// Chart is one category's chart for one endpoint, ready to be rendered.
type Chart struct {
	// Path is the CSV the chart was built from.
	Path       string
	Endpoint   string
	Mode       domain.Mode
	Category   domain.Category
	Title      string
	XAxisLabel string
	YAxisLabel string
	Series     []domain.Series
	// Missing holds the candidate columns absent from the table.
	Missing []string
}

func (c Chart) Empty() bool {
	return len(c.Series) == 0
}

// Title joins the endpoint and the category label the way the source's mode expects.
func Title(source domain.Source, category domain.Category) string {
	endpoint := source.Endpoint
	if source.Mode.CapitalizeEndpoint {
		endpoint = capitalize(endpoint)
	}
	label := category.Label
	if source.Mode.ShortLabels {
		label = category.ShortLabel
	}
	return fmt.Sprintf("%s — %s", endpoint, label)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.English).String(string(r)) + cases.Lower(language.English).String(s[size:])
}

// Build looks up the add, update and delete columns of category in table.
// Absent columns are reported in Chart.Missing and simply not plotted.
func Build(ctx context.Context, table domain.Table, source domain.Source, category domain.Category) (Chart, error) {
	c := Chart{
		Path:       source.Path,
		Endpoint:   source.Endpoint,
		Mode:       source.Mode,
		Category:   category,
		Title:      Title(source, category),
		XAxisLabel: XAxisLabel,
		YAxisLabel: category.YAxisLabel,
	}

	for _, op := range domain.Operations {
		column := category.Column(op)

		series, ok, err := table.Lookup(ctx, column)
		if err != nil {
			return Chart{}, err
		}
		if !ok {
			c.Missing = append(c.Missing, column)
			continue
		}
		series.Label = category.SeriesLabel(op)
		c.Series = append(c.Series, series)
	}
	return c, nil
}

type Renderer struct {
	Width  int
	Height int
	DPI    float64
}

func NewRenderer(width, height int, dpi float64) *Renderer {
	return &Renderer{Width: width, Height: height, DPI: dpi}
}

// Render draws c as a PNG into w.
func (r *Renderer) Render(c Chart, w io.Writer) error {
	graph := r.graph(c)

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("%w: %s: %s: %v", domain.ErrRenderFailed, c.Path, c.Title, err)
	}
	return nil
}

func (r *Renderer) RenderBytes(c Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) graph(c Chart) *chart.Chart {
	// sizes are in points and scale with DPI
	scale := r.DPI / 72
	strokeWidth := math.Max(1, 1.5*scale)
	pad := int(8 * scale)

	gridStyle := chart.Style{StrokeColor: gridColor, StrokeWidth: math.Max(1, 0.8*scale)}

	var series []chart.Series
	for i, s := range c.Series {
		if s.Len() == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name: s.Label,
			Style: chart.Style{
				StrokeColor: seriesColors[i%len(seriesColors)],
				StrokeWidth: strokeWidth,
			},
			XValues: s.Offsets,
			YValues: s.Values,
		})
	}

	xRange, yRange := ranges(c.Series)

	graph := &chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      r.Width,
		Height:     r.Height,
		DPI:        r.DPI,
		Background: chart.Style{Padding: chart.Box{Top: pad * 4, Left: pad, Right: pad, Bottom: pad}},
		XAxis: chart.XAxis{
			Name:           c.XAxisLabel,
			Range:          xRange,
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           c.YAxisLabel,
			Range:          yRange,
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
	}

	if len(series) == 0 {
		// go-chart refuses a chart without a visible series; draw the frame
		// around an invisible one instead.
		graph.Series = []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: placeholderColor, StrokeWidth: 1},
			XValues: []float64{xRange.Min, xRange.Max},
			YValues: []float64{yRange.Min, yRange.Max},
		}}
		return graph
	}

	graph.Series = series
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

// ranges spans every plotted point. Degenerate spans are widened so a single
// sample or a constant series still renders; the y span gets a 5% margin.
func ranges(series []domain.Series) (*chart.ContinuousRange, *chart.ContinuousRange) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)

	for _, s := range series {
		for i := range s.Offsets {
			minX = math.Min(minX, s.Offsets[i])
			maxX = math.Max(maxX, s.Offsets[i])
			minY = math.Min(minY, s.Values[i])
			maxY = math.Max(maxY, s.Values[i])
		}
	}

	if math.IsInf(minX, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}, &chart.ContinuousRange{Min: 0, Max: 1}
	}

	if maxX == minX {
		maxX = minX + 1
	}

	if maxY == minY {
		pad := math.Max(math.Abs(minY)*0.05, 1)
		minY, maxY = minY-pad, maxY+pad
	} else {
		margin := (maxY - minY) * 0.05
		minY, maxY = minY-margin, maxY+margin
	}

	return &chart.ContinuousRange{Min: minX, Max: maxX}, &chart.ContinuousRange{Min: minY, Max: maxY}
}
