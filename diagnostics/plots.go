// Package diagnostics renders the fitted pMPO curves of each selected
// descriptor with gonum/plot.
package diagnostics

import (
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pmpo/core/parallel"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/pmpo"
	"github.com/YuminosukeSato/pmpo/stats"
)

var formats = map[string]struct{}{
	"png": {}, "svg": {}, "pdf": {}, "eps": {}, "jpg": {}, "jpeg": {}, "tif": {}, "tiff": {},
}

var (
	gaussianColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	sigmoidColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	productColor  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	cutoffColor   = color.RGBA{R: 127, G: 127, B: 127, A: 255}
)

// SaveDescriptorPlots writes one plot per selected descriptor of table into
// dir, named <descriptor>.<format>. Each plot shows the weighted Gaussian, the
// sigmoidal correction, their product and the cutoff. It returns the written
// paths in table order.
func SaveDescriptorPlots(m *pmpo.Model, table stats.Table, dir, format string) ([]string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if _, ok := formats[format]; !ok {
		return nil, errors.NewValueError("SaveDescriptorPlots", "unsupported image format "+format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	selected := table.Selected()
	paths := make([]string, len(selected))
	for i, d := range selected {
		paths[i] = filepath.Join(dir, fileName(d.Name)+"."+format)
	}

	err := parallel.ForEach(context.Background(), len(selected), 0, func(_ context.Context, i int) error {
		p, err := DescriptorPlot(m, selected[i])
		if err != nil {
			return err
		}
		if err := p.Save(6*vg.Inch, 4*vg.Inch, paths[i]); err != nil {
			return errors.Wrapf(err, "failed to save %s", paths[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.GetLoggerWithName("pmpo.diagnostics").Debug("Descriptor plots saved", "dir", dir, log.DescriptorsKey, len(paths))
	return paths, nil
}

// DescriptorPlot builds the plot of one descriptor registered in m.
func DescriptorPlot(m *pmpo.Model, d stats.Descriptor) (*plot.Plot, error) {
	g, ok := m.Gaussian(d.Name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrColumnNotFound, "descriptor %s is not in model %s", d.Name, m.Name())
	}
	s, hasSigmoid := m.Sigmoidal(d.Name)

	gp := g.Params()
	lo, hi := gp.Mean-4*math.Abs(gp.Std), gp.Mean+4*math.Abs(gp.Std)
	if errors.IsFinite(d.BadMean) {
		lo, hi = math.Min(lo, d.BadMean), math.Max(hi, d.BadMean)
	}

	p := plot.New()
	p.Title.Text = d.Name
	p.X.Label.Text = d.Name
	p.Y.Label.Text = "desirability"
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	curve := func(fn func(float64) float64, c color.Color) *plotter.Function {
		f := plotter.NewFunction(fn)
		f.XMin, f.XMax = lo, hi
		f.Samples = 200
		f.Color = c
		f.Width = vg.Points(1.5)
		return f
	}

	gauss := curve(g.Evaluate, gaussianColor)
	p.Add(gauss)
	p.Legend.Add("gaussian", gauss)

	if hasSigmoid {
		sig := curve(s.Evaluate, sigmoidColor)
		product := curve(func(x float64) float64 { return g.Evaluate(x) * s.Evaluate(x) }, productColor)
		product.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(sig, product)
		p.Legend.Add("sigmoid", sig)
		p.Legend.Add("product", product)

		cut := s.Params().Cutoff
		line, err := plotter.NewLine(plotter.XYs{{X: cut, Y: 0}, {X: cut, Y: 1}})
		if err != nil {
			return nil, errors.Wrap(err, "cutoff line")
		}
		line.Color = cutoffColor
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("cutoff", line)
	}
	p.Legend.Top = true
	return p, nil
}

func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
