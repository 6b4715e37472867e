package hey

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var organismColors = map[Organism]drawing.Color{
	HeLa:    drawing.ColorFromHex("9b59b6"),
	Ecoli:   drawing.ColorFromHex("e67e22"),
	Yeast:   drawing.ColorFromHex("16a085"),
	Unknown: drawing.ColorFromHex("95a5a6"),
}

// ExpectedLog2 is the theoretical log2(low/high) per organism for the HEY
// mix design: HeLa constant, E.coli 25:100, Yeast 150:75.
var ExpectedLog2 = map[Organism]float64{
	HeLa:  0,
	Ecoli: -2,
	Yeast: 1,
}

// RenderCountChart writes a PNG bar chart of per-sample protein ID counts,
// one bar per sample and organism, colored by organism.
func RenderCountChart(counts []CountRow, w io.Writer) error {
	var bars []chart.Value
	for _, row := range counts {
		for _, organism := range Organisms {
			n := row.Counts[organism]
			if n == 0 {
				continue
			}
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s %s", row.Sample, organism),
				Value: float64(n),
				Style: chart.Style{
					FillColor:   organismColors[organism],
					StrokeColor: organismColors[organism],
				},
			})
		}
	}
	if len(bars) == 0 {
		return fmt.Errorf("hey: no identifications to chart")
	}

	graph := chart.BarChart{
		Title:    "Protein ID Counts by Organism",
		Width:    256 + 128*len(bars),
		Height:   512,
		BarWidth: 60,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name:  "Protein IDs",
			Range: barRange(bars),
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

// RenderRatioChart writes a PNG bar chart of one organism's per-pair median
// log2 ratios. The expected value for the mix design is carried in the
// title; absent pairs are simply not drawn.
func RenderRatioChart(organism Organism, results []PairRatios, w io.Writer) error {
	var bars []chart.Value
	for _, pr := range results {
		if len(pr.Ratios) == 0 {
			continue
		}
		bars = append(bars, chart.Value{
			Label: pr.Label,
			Value: median(pr.Ratios),
			Style: chart.Style{
				FillColor:   organismColors[organism],
				StrokeColor: organismColors[organism],
			},
		})
	}
	if len(bars) == 0 {
		return fmt.Errorf("hey: no %s ratio data to chart", organism)
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s median log2(low/high), expected %+g", organism, ExpectedLog2[organism]),
		Width:    256 + 128*len(bars),
		Height:   512,
		BarWidth: 60,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name:  "log2 ratio",
			Range: barRange(bars),
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

// barRange pins the value axis to a non-degenerate window spanning zero and
// every bar, since an all-equal bar set would otherwise collapse the range.
func barRange(bars []chart.Value) *chart.ContinuousRange {
	min, max := 0.0, 0.0
	for _, bar := range bars {
		if bar.Value < min {
			min = bar.Value
		}
		if bar.Value > max {
			max = bar.Value
		}
	}

	pad := (max - min) * 0.1
	if pad == 0 {
		pad = 1
	}

	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}
