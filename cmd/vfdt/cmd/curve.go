package cmd

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
)

// saveLearningCurve は累積正解率の推移を画像として保存する
// 形式はファイル拡張子から決まる
func saveLearningCurve(path string, curve []curvePoint) error {
	if len(curve) == 0 {
		return errors.NewValueError("saveLearningCurve", "the learning curve is empty; use a smaller --batch-size")
	}

	p := plot.New()
	p.Title.Text = "Prequential accuracy"
	p.X.Label.Text = "weight learned"
	p.Y.Label.Text = "accuracy"
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(curve))
	for i, c := range curve {
		pts[i].X = c.seen
		pts[i].Y = c.accuracy
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building learning curve")
	}
	p.Add(plotter.NewGrid(), line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving learning curve to %s", path)
	}
	return nil
}
