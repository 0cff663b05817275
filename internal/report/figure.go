package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"bifacial-compare/internal/model"
	"bifacial-compare/internal/simulate"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Kind selects which pair of curves a figure shows.
type Kind string

const (
	KindAC Kind = "AC"
	KindDC Kind = "DC"
)

// FigureName is the file a figure of this kind is written to.
func (k Kind) FigureName() string {
	if k == KindDC {
		return "dc_results.png"
	}
	return "ac_results.png"
}

var (
	bifacialColor   = color.RGBA{R: 220, A: 255}
	monofacialColor = color.RGBA{B: 220, A: 255}
)

// Panel is one subplot. Curves is nil for a scenario that failed.
type Panel struct {
	Title  string
	Curves *model.RunCurves
}

// PanelsFromOutcomes builds one panel per outcome, in scenario order.
func PanelsFromOutcomes(mode model.Mode, outcomes []simulate.Outcome) []Panel {
	panels := make([]Panel, len(outcomes))
	for i, o := range outcomes {
		panels[i] = Panel{Title: o.Scenario.Title(mode), Curves: o.Curves}
		if o.Curves == nil {
			panels[i].Title += " (failed)"
		}
	}
	return panels
}

// RenderFigure draws bifacial (red) and monofacial (blue) curves of every panel
// on a grid with rowsPerColumn rows and writes it as PNG.
func RenderFigure(path string, kind Kind, panels []Panel, rowsPerColumn int) error {
	if len(panels) == 0 {
		return fmt.Errorf("render %s figure: no panels", kind)
	}
	cols, rows := GridShape(len(panels), rowsPerColumn)

	plots := make([][]*plot.Plot, rows)
	for j := 0; j < rows; j++ {
		plots[j] = make([]*plot.Plot, cols)
	}
	for i, pn := range panels {
		p, err := panelPlot(kind, pn)
		if err != nil {
			return fmt.Errorf("render %s figure: panel %q: %w", kind, pn.Title, err)
		}
		col, row := GridIndex(i, rows)
		plots[row][col] = p
	}

	img := vgimg.New(vg.Points(float64(cols)*360), vg.Points(float64(rows)*240))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}

func panelPlot(kind Kind, pn Panel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pn.Title
	p.X.Label.Text = "Hours"
	p.Y.Label.Text = fmt.Sprintf("%s Power (W)", kind)
	p.Add(plotter.NewGrid())
	if pn.Curves == nil {
		return p, nil
	}

	bif, mono := pn.Curves.BifacialAC, pn.Curves.MonofacialAC
	if kind == KindDC {
		bif, mono = pn.Curves.BifacialDC, pn.Curves.MonofacialDC
	}
	hours := model.HoursSince(pn.Curves.Times)

	for _, s := range []struct {
		name  string
		ys    []float64
		color color.Color
	}{
		{"Bifacial", bif, bifacialColor},
		{"Monofacial", mono, monofacialColor},
	} {
		pts := points(hours, s.ys)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// points pairs x and y, dropping NaN samples.
func points(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}
