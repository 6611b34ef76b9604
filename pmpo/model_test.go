package pmpo

import (
	"encoding/json"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremodel "github.com/YuminosukeSato/pmpo/core/model"
	"github.com/YuminosukeSato/pmpo/function"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

type publishedDescriptor struct {
	name string
	g    function.GaussianParams
	s    function.SigmoidalParams
}

// Published CNS pMPO parameters.
var cnsDescriptors = []publishedDescriptor{
	{"TPSA", function.GaussianParams{Mean: 50.7017727635, Std: 28.3039124335, Weight: 0.333254}, function.SigmoidalParams{B: 0.151695487107, C: 0.793679783519, Cutoff: 65.7447200619}},
	{"HBD", function.GaussianParams{Mean: 1.08695652174, Std: 0.891691734071, Weight: 0.265798}, function.SigmoidalParams{B: 0.0940054673368, C: 9.51515104848e-05, Cutoff: 1.46494485092}},
	{"MW", function.GaussianParams{Mean: 304.703053545, Std: 94.0468619927, Weight: 0.157354}, function.SigmoidalParams{B: 0.0319893623019, C: 0.829287962918, Cutoff: 328.304266431}},
	{"CLOGD_ACD_V15", function.GaussianParams{Mean: 1.80861953019, Std: 1.93092146089, Weight: 0.127332}, function.SigmoidalParams{B: 0.0208331236351, C: 131996.985929, Cutoff: 1.41650379728}},
	{"MBPKA", function.GaussianParams{Mean: 8.07348212768, Std: 2.20894961173, Weight: 0.116262}, function.SigmoidalParams{B: 0.0173381729161, C: 1459310.7835, Cutoff: 7.66390710544}},
}

var aspirin = map[string]float64{"TPSA": 63.6, "HBD": 1, "MW": 180.16, "CLOGD_ACD_V15": -2.0}

func cnsModel(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	m := NewModel("CNS pMPO", opts...)
	for _, d := range cnsDescriptors {
		g, err := function.NewWeightedGaussian(d.g)
		require.NoError(t, err)
		s, err := function.NewSigmoidal(d.s)
		require.NoError(t, err)
		require.NoError(t, m.Register(d.name, g, s))
	}
	return m
}

func TestModelScoreReference(t *testing.T) {
	m := cnsModel(t)
	assert.InDelta(t, 0.6046515652059739, m.Score(aspirin), 1e-9)
	assert.InDelta(t, 0.607, m.Score(aspirin), 0.1)

	m.SetSigmoidalCorrection(false)
	assert.InDelta(t, 0.64860068984265, m.Score(aspirin), 1e-9)
	assert.InDelta(t, 0.65, m.Score(aspirin), 0.025)
}

func TestModelScoreSkipsUnknownAndNaN(t *testing.T) {
	m := cnsModel(t)
	assert.Equal(t, 0.0, NewModel("empty").Score(aspirin))
	assert.Equal(t, 0.0, m.Score(map[string]float64{"LOGP": 3}))
	assert.Equal(t, 0.0, m.Score(map[string]float64{"TPSA": math.NaN()}))
	assert.Equal(t, 0.0, m.Score(nil))

	withNaN := map[string]float64{"TPSA": 63.6, "HBD": math.NaN()}
	only := map[string]float64{"TPSA": 63.6}
	assert.Equal(t, m.Score(only), m.Score(withNaN))
}

func TestModelCaseSensitivity(t *testing.T) {
	tpsa := map[string]float64{"TPSA": 63.6}
	lower := map[string]float64{"tpsa": 63.6}

	ci := cnsModel(t)
	assert.InDelta(t, 0.3003869731871587*0.9154034759952234, ci.Score(lower), 1e-12)
	assert.InDelta(t, ci.Score(tpsa), ci.Score(lower), 1e-15)
	_, ok := ci.Gaussian("tpsa")
	assert.True(t, ok)

	cs := cnsModel(t, WithModelCaseInsensitive(false))
	assert.Equal(t, 0.0, cs.Score(lower))
	assert.InDelta(t, 0.3003869731871587*0.9154034759952234, cs.Score(tpsa), 1e-12)
	_, ok = cs.Gaussian("tpsa")
	assert.False(t, ok)
}

func TestModelSetCaseInsensitiveAffectsLaterRegistrations(t *testing.T) {
	g, err := function.NewWeightedGaussian(function.GaussianParams{Mean: 0, Std: 1, Weight: 1})
	require.NoError(t, err)

	m := NewModel("m")
	require.NoError(t, m.Register("logp", g, nil))
	m.SetCaseInsensitive(false)
	require.NoError(t, m.Register("tpsa", g, nil))

	assert.Equal(t, []string{"LOGP", "tpsa"}, m.Descriptors())
	assert.False(t, m.CaseInsensitive())
}

func TestModelRegister(t *testing.T) {
	g, err := function.NewWeightedGaussian(function.GaussianParams{Mean: 0, Std: 1, Weight: 1})
	require.NoError(t, err)

	m := NewModel("m")
	var pre *errors.PreconditionError
	assert.True(t, errors.As(m.Register("", g, nil), &pre))
	assert.True(t, errors.As(m.Register("X", nil, nil), &pre))

	// last write wins
	require.NoError(t, m.Register("X", g, nil))
	g2, err := function.NewWeightedGaussian(function.GaussianParams{Mean: 0, Std: 1, Weight: 0.5})
	require.NoError(t, err)
	require.NoError(t, m.Register("x", g2, nil))
	assert.Equal(t, []string{"X"}, m.Descriptors())
	assert.InDelta(t, 0.5, m.Score(map[string]float64{"X": 0}), 1e-12)

	_, ok := m.Sigmoidal("X")
	assert.False(t, ok)
}

func TestModelString(t *testing.T) {
	g, err := function.NewWeightedGaussian(cnsDescriptors[0].g)
	require.NoError(t, err)
	s, err := function.NewSigmoidal(cnsDescriptors[0].s)
	require.NoError(t, err)

	m := NewModel("m")
	require.NoError(t, m.Register("TPSA", g, s))
	assert.Equal(t,
		"m: [TPSA] 0.33 * exp(-1.0 * (x - 50.70)^2 / (2.0 * (28.30)^2)) * (1.0 + 0.15 * 0.79^(-1.0 * (x - 65.74)))^-1.0",
		m.String())

	m.SetSigmoidalCorrection(false)
	m.SetName("renamed")
	assert.Equal(t, "renamed: [TPSA] 0.33 * exp(-1.0 * (x - 50.70)^2 / (2.0 * (28.30)^2))", m.String())

	full := cnsModel(t).String()
	assert.Contains(t, full, "CNS pMPO: [CLOGD_ACD_V15] ")
	assert.Contains(t, full, " + [HBD] ")
	assert.Equal(t, "empty: ", NewModel("empty").String())
}

func TestModelPersistenceRoundTrip(t *testing.T) {
	for _, file := range []string{"cns.gob", "cns.json"} {
		t.Run(file, func(t *testing.T) {
			m := cnsModel(t)
			path := filepath.Join(t.TempDir(), file)
			require.NoError(t, SaveModel(m, path))

			back, err := LoadModel(path)
			require.NoError(t, err)
			assert.Equal(t, m.String(), back.String())
			assert.InDelta(t, m.Score(aspirin), back.Score(aspirin), 1e-12)
			assert.Equal(t, m.Descriptors(), back.Descriptors())
			assert.True(t, back.CaseInsensitive())
			assert.True(t, back.SigmoidalCorrection())
		})
	}
}

func TestModelJSONWithoutSigmoid(t *testing.T) {
	g, err := function.NewWeightedGaussian(function.GaussianParams{Mean: 1, Std: 2, Weight: 1})
	require.NoError(t, err)
	m := NewModel("plain", WithModelSigmoidalCorrection(false))
	require.NoError(t, m.Register("A", g, nil))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Model
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.String(), back.String())
	_, ok := back.Sigmoidal("A")
	assert.False(t, ok)
	assert.False(t, back.SigmoidalCorrection())

	assert.Error(t, json.Unmarshal([]byte(`{"model_type":"pMPO","version":"2"}`), &back))
}

func TestFromDocumentFoldsNames(t *testing.T) {
	doc := &coremodel.ModelDocument{
		ModelType:       coremodel.ModelType,
		Version:         coremodel.DocumentVersion,
		Name:            "lower",
		CaseInsensitive: true,
		Descriptors: []coremodel.DescriptorDocument{
			{Name: "tpsa", Gaussian: function.GaussianParams{Mean: 0, Std: 1, Weight: 1}},
		},
	}

	m, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"TPSA"}, m.Descriptors())
	assert.InDelta(t, 1.0, m.Score(map[string]float64{"tpsa": 0}), 1e-12)
	assert.InDelta(t, 1.0, m.Score(map[string]float64{"TPSA": 0}), 1e-12)

	doc.CaseInsensitive = false
	m, err = FromDocument(doc)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Score(map[string]float64{"tpsa": 0}), 1e-12)
	assert.Equal(t, 0.0, m.Score(map[string]float64{"TPSA": 0}))
}

func TestFromDocumentRejectsFoldedCollision(t *testing.T) {
	g := function.GaussianParams{Mean: 0, Std: 1, Weight: 0.5}
	doc := &coremodel.ModelDocument{
		ModelType:       coremodel.ModelType,
		Version:         coremodel.DocumentVersion,
		Name:            "collide",
		CaseInsensitive: true,
		Descriptors: []coremodel.DescriptorDocument{
			{Name: "TPSA", Gaussian: g},
			{Name: "tpsa", Gaussian: g},
		},
	}

	_, err := FromDocument(doc)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	doc.CaseInsensitive = false
	m, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"TPSA", "tpsa"}, m.Descriptors())
}

func TestModelConcurrentScore(t *testing.T) {
	m := cnsModel(t)
	want := m.Score(aspirin)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Score(aspirin)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.InDelta(t, want, got, 1e-12)
	}
}
