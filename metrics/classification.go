package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// AUC は ROC 曲線下面積を計算する。yTrue は 0 または 1 でなければならない
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	scores := make([]float64, n)
	labels := make([]bool, n)
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 0:
		case 1:
			labels[i] = true
		default:
			return 0, errors.NewValueError("AUC", "labels must be 0 or 1")
		}
		scores[i] = yPred.AtVec(i)
	}
	return ROCAUC(scores, labels)
}

// ROCAUC は labels[i] が正例かどうかを表すとき、scores による ROC AUC を返す。
// 片方のクラスしか存在しない場合は 0.5 を返す
func ROCAUC(scores []float64, labels []bool) (float64, error) {
	n := len(scores)
	if n == 0 {
		return 0, errors.NewValueError("ROCAUC", "empty input")
	}
	if len(labels) != n {
		return 0, errors.NewDimensionError("ROCAUC", n, len(labels), 0)
	}

	var pos int
	for i, l := range labels {
		if err := errors.CheckScalar("ROCAUC", scores[i]); err != nil {
			return 0, err
		}
		if l {
			pos++
		}
	}
	// 未定義のケース
	if pos == 0 || pos == n {
		return 0.5, nil
	}

	// stat.ROC は昇順にソートされたスコアを要求する
	y := append([]float64(nil), scores...)
	inds := make([]int, n)
	floats.Argsort(y, inds)
	classes := make([]bool, n)
	for i, idx := range inds {
		classes[i] = labels[idx]
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
