// Package function provides the two closed-form curves a pMPO model is made
// of: the weighted Gaussian desirability and the sigmoidal correction.
//
// Both are immutable once constructed and safe for concurrent use.
package function

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// Function is a scalar curve of one descriptor value.
type Function interface {
	Evaluate(x float64) float64
	String() string
}

var (
	_ Function = (*WeightedGaussian)(nil)
	_ Function = (*Sigmoidal)(nil)
)

// GaussianParams parameterise a WeightedGaussian.
type GaussianParams struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Weight float64 `json:"weight"`
}

// SigmoidalParams parameterise a Sigmoidal.
type SigmoidalParams struct {
	B      float64 `json:"b"`
	C      float64 `json:"c"`
	Cutoff float64 `json:"cutoff"`
}

// WeightedGaussian evaluates weight * exp(-(x-mean)^2 / (2*std^2)).
type WeightedGaussian struct {
	p GaussianParams
}

// NewWeightedGaussian validates p and returns the curve.
func NewWeightedGaussian(p GaussianParams) (*WeightedGaussian, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &WeightedGaussian{p: p}, nil
}

func (p GaussianParams) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"mean", p.Mean}, {"std", p.Std}, {"weight", p.Weight}} {
		if !errors.IsFinite(f.v) {
			return errors.NewParameterError("WeightedGaussian", f.name, "must be a finite number", f.v)
		}
	}
	if p.Std == 0 {
		return errors.NewParameterError("WeightedGaussian", "std", "must be non-zero", p.Std)
	}
	return nil
}

// Params returns a copy of the parameters.
func (g *WeightedGaussian) Params() GaussianParams { return g.p }

// Evaluate implements Function.
func (g *WeightedGaussian) Evaluate(x float64) float64 {
	d := x - g.p.Mean
	return g.p.Weight * math.Exp(-(d*d)/(2.0*g.p.Std*g.p.Std))
}

func (g *WeightedGaussian) String() string {
	return fmt.Sprintf("%.2f * exp(-1.0 * (x - %.2f)^2 / (2.0 * (%.2f)^2))", g.p.Weight, g.p.Mean, g.p.Std)
}

// MarshalJSON encodes the parameters.
func (g *WeightedGaussian) MarshalJSON() ([]byte, error) { return json.Marshal(g.p) }

// UnmarshalJSON decodes and re-validates the parameters.
func (g *WeightedGaussian) UnmarshalJSON(data []byte) error {
	var p GaussianParams
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, "decode gaussian")
	}
	if err := p.validate(); err != nil {
		return err
	}
	g.p = p
	return nil
}

// GobEncode implements gob.GobEncoder.
func (g *WeightedGaussian) GobEncode() ([]byte, error) { return gobEncode(g.p) }

// GobDecode implements gob.GobDecoder.
func (g *WeightedGaussian) GobDecode(data []byte) error {
	var p GaussianParams
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return errors.Wrap(err, "decode gaussian")
	}
	if err := p.validate(); err != nil {
		return err
	}
	g.p = p
	return nil
}

// Sigmoidal evaluates (1 + b * c^(-(x-cutoff)))^-1.
type Sigmoidal struct {
	p SigmoidalParams
}

// NewSigmoidal validates p and returns the curve.
func NewSigmoidal(p SigmoidalParams) (*Sigmoidal, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Sigmoidal{p: p}, nil
}

func (p SigmoidalParams) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"b", p.B}, {"c", p.C}, {"cutoff", p.Cutoff}} {
		if !errors.IsFinite(f.v) {
			return errors.NewParameterError("Sigmoidal", f.name, "must be a finite number", f.v)
		}
	}
	return nil
}

// Params returns a copy of the parameters.
func (s *Sigmoidal) Params() SigmoidalParams { return s.p }

// Evaluate implements Function.
func (s *Sigmoidal) Evaluate(x float64) float64 {
	return 1.0 / (1.0 + s.p.B*math.Pow(s.p.C, -(x-s.p.Cutoff)))
}

func (s *Sigmoidal) String() string {
	return fmt.Sprintf("(1.0 + %.2f * %.2f^(-1.0 * (x - %.2f)))^-1.0", s.p.B, s.p.C, s.p.Cutoff)
}

// MarshalJSON encodes the parameters.
func (s *Sigmoidal) MarshalJSON() ([]byte, error) { return json.Marshal(s.p) }

// UnmarshalJSON decodes and re-validates the parameters.
func (s *Sigmoidal) UnmarshalJSON(data []byte) error {
	var p SigmoidalParams
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, "decode sigmoidal")
	}
	if err := p.validate(); err != nil {
		return err
	}
	s.p = p
	return nil
}

// GobEncode implements gob.GobEncoder.
func (s *Sigmoidal) GobEncode() ([]byte, error) { return gobEncode(s.p) }

// GobDecode implements gob.GobDecoder.
func (s *Sigmoidal) GobDecode(data []byte) error {
	var p SigmoidalParams
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return errors.Wrap(err, "decode sigmoidal")
	}
	if err := p.validate(); err != nil {
		return err
	}
	s.p = p
	return nil
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "gob encode")
	}
	return buf.Bytes(), nil
}

// GaussianFromValues builds a WeightedGaussian from a parameter bag holding
// "mean", "std" and "weight". Values may be numbers or numeric strings.
func GaussianFromValues(values map[string]any) (*WeightedGaussian, error) {
	var p GaussianParams
	var err error
	if p.Mean, err = param("WeightedGaussian", "mean", values); err != nil {
		return nil, err
	}
	if p.Std, err = param("WeightedGaussian", "std", values); err != nil {
		return nil, err
	}
	if p.Weight, err = param("WeightedGaussian", "weight", values); err != nil {
		return nil, err
	}
	return NewWeightedGaussian(p)
}

// SigmoidalFromValues builds a Sigmoidal from a parameter bag holding "b", "c" and "cutoff".
func SigmoidalFromValues(values map[string]any) (*Sigmoidal, error) {
	var p SigmoidalParams
	var err error
	if p.B, err = param("Sigmoidal", "b", values); err != nil {
		return nil, err
	}
	if p.C, err = param("Sigmoidal", "c", values); err != nil {
		return nil, err
	}
	if p.Cutoff, err = param("Sigmoidal", "cutoff", values); err != nil {
		return nil, err
	}
	return NewSigmoidal(p)
}

func param(fn, name string, values map[string]any) (float64, error) {
	v, ok := values[name]
	if !ok || v == nil {
		return 0, errors.NewParameterError(fn, name, "not provided", nil)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, nil
		}
	}
	return 0, errors.NewParameterError(fn, name, "cannot be converted to a real number", v)
}
