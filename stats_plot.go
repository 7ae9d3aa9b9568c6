package fxindex

import (
	"bytes"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i++ {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: strconv.Itoa(i)})
	}
	return ticks
}

// LengthHistogramSVG renders the read/sequence length distribution as a
// binned line plot and returns the SVG document as a string. This is
// additive beyond the indexed lookup path; nothing else in the package
// calls it.
func (s *Statistics) LengthHistogramSVG() (string, error) {
	if len(s.lengths) == 0 {
		return "", newErr(KindInvalidArgument, "no records to plot")
	}

	p := plot.New()
	p.Title.Text = "Sequence Length Distribution"
	p.X.Label.Text = "Sequence Length"
	p.Y.Label.Text = "Record Count"
	p.X.Tick.Marker = integerTicks{}

	binCount := 100
	if len(s.lengths) < binCount {
		binCount = len(s.lengths)
	}
	minLen, maxLen := s.lengths[0], s.lengths[0]
	for _, l := range s.lengths {
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}
	binWidth := (maxLen - minLen + 1) / float64(binCount)
	if binWidth <= 0 {
		binWidth = 1
	}
	counts := make([]float64, binCount)
	for _, l := range s.lengths {
		bin := int((l - minLen) / binWidth)
		if bin >= binCount {
			bin = binCount - 1
		}
		counts[bin]++
	}

	points := make(plotter.XYs, binCount)
	for i := 0; i < binCount; i++ {
		points[i].X = minLen + binWidth*float64(i) + binWidth/2
		points[i].Y = counts[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("Record Count", line)
	p.Legend.Top = true

	var buf bytes.Buffer
	writer, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return "", err
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StdDevLength reports the sample (n-1) standard deviation of seq_length,
// feeding the same gonum/stat surface the mean/median summaries use.
func (s *Statistics) StdDevLength() float64 {
	if len(s.lengths) == 0 {
		return 0
	}
	return stat.StdDev(s.lengths, nil)
}
