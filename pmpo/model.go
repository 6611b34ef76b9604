package pmpo

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"

	coremodel "github.com/YuminosukeSato/pmpo/core/model"
	"github.com/YuminosukeSato/pmpo/function"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

var _ coremodel.ScoringModel = (*Model)(nil)

// Model is an additive pMPO scoring model: the sum over registered
// descriptors of a weighted Gaussian, optionally multiplied by a sigmoidal
// correction.
//
// Score may be called concurrently. Setters and Register take a write lock.
type Model struct {
	mu                  sync.RWMutex
	name                string
	caseInsensitive     bool
	sigmoidalCorrection bool
	gaussians           map[Key]*function.WeightedGaussian
	sigmoidals          map[Key]*function.Sigmoidal
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithModelCaseInsensitive sets whether descriptor names are matched ignoring case.
func WithModelCaseInsensitive(ci bool) ModelOption {
	return func(m *Model) {
		m.caseInsensitive = ci
	}
}

// WithModelSigmoidalCorrection sets whether sigmoidal corrections are applied.
func WithModelSigmoidalCorrection(use bool) ModelOption {
	return func(m *Model) {
		m.sigmoidalCorrection = use
	}
}

// NewModel creates an empty model. By default it is case-insensitive and
// applies the sigmoidal correction.
func NewModel(name string, opts ...ModelOption) *Model {
	m := &Model{
		name:                name,
		caseInsensitive:     true,
		sigmoidalCorrection: true,
		gaussians:           make(map[Key]*function.WeightedGaussian),
		sigmoidals:          make(map[Key]*function.Sigmoidal),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds or replaces the functions of a descriptor. sigmoidal may be nil.
func (m *Model) Register(name string, gaussian *function.WeightedGaussian, sigmoidal *function.Sigmoidal) error {
	if name == "" {
		return errors.NewPreconditionError("Register", "descriptor name is empty")
	}
	if gaussian == nil {
		return errors.NewPreconditionError("Register", "gaussian function for "+name+" is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := NewKey(name, m.caseInsensitive)
	m.gaussians[key] = gaussian
	if sigmoidal != nil {
		m.sigmoidals[key] = sigmoidal
	} else {
		delete(m.sigmoidals, key)
	}
	return nil
}

// Score returns the pMPO score of one entity. Names without a registered
// function and NaN values contribute nothing; an empty model scores 0.
func (m *Model) Score(values map[string]float64) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	score := 0.0
	for name, v := range values {
		if math.IsNaN(v) {
			continue
		}
		key := NewKey(name, m.caseInsensitive)
		g, ok := m.gaussians[key]
		if !ok {
			continue
		}
		s := g.Evaluate(v)
		if m.sigmoidalCorrection {
			if sig, ok := m.sigmoidals[key]; ok {
				s *= sig.Evaluate(v)
			}
		}
		score += s
	}
	return score
}

// Name returns the model name.
func (m *Model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// SetName renames the model.
func (m *Model) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

// SigmoidalCorrection reports whether sigmoidal corrections are applied.
func (m *Model) SigmoidalCorrection() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sigmoidalCorrection
}

// SetSigmoidalCorrection toggles the sigmoidal correction.
func (m *Model) SetSigmoidalCorrection(use bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigmoidalCorrection = use
}

// CaseInsensitive reports whether names are matched ignoring case.
func (m *Model) CaseInsensitive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caseInsensitive
}

// SetCaseInsensitive changes how later registrations and lookups normalise
// names. Keys already registered are not rewritten.
func (m *Model) SetCaseInsensitive(ci bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caseInsensitive = ci
}

// Descriptors returns the registered keys in sorted order.
func (m *Model) Descriptors() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedKeys()
}

func (m *Model) sortedKeys() []string {
	keys := make([]string, 0, len(m.gaussians))
	for k := range m.gaussians {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Gaussian returns the weighted Gaussian registered for name.
func (m *Model) Gaussian(name string) (*function.WeightedGaussian, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gaussians[NewKey(name, m.caseInsensitive)]
	return g, ok
}

// Sigmoidal returns the sigmoidal correction registered for name.
func (m *Model) Sigmoidal(name string) (*function.Sigmoidal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sigmoidals[NewKey(name, m.caseInsensitive)]
	return s, ok
}

// String renders the model as "<name>: " followed by the sorted per-descriptor
// terms joined with " + ".
func (m *Model) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	terms := make([]string, 0, len(m.gaussians))
	for key, g := range m.gaussians {
		term := "[" + string(key) + "] " + g.String()
		if m.sigmoidalCorrection {
			if s, ok := m.sigmoidals[key]; ok {
				term += " * " + s.String()
			}
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return m.name + ": " + strings.Join(terms, " + ")
}

// Document converts the model to its portable form.
func (m *Model) Document() *coremodel.ModelDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := &coremodel.ModelDocument{
		ModelType:           coremodel.ModelType,
		Version:             coremodel.DocumentVersion,
		Name:                m.name,
		SigmoidalCorrection: m.sigmoidalCorrection,
		CaseInsensitive:     m.caseInsensitive,
		Descriptors:         make([]coremodel.DescriptorDocument, 0, len(m.gaussians)),
	}
	for _, name := range m.sortedKeys() {
		key := Key(name)
		desc := coremodel.DescriptorDocument{Name: name, Gaussian: m.gaussians[key].Params()}
		if s, ok := m.sigmoidals[key]; ok {
			p := s.Params()
			desc.Sigmoidal = &p
		}
		doc.Descriptors = append(doc.Descriptors, desc)
	}
	return doc
}

// FromDocument rebuilds a model from its portable form.
func FromDocument(doc *coremodel.ModelDocument) (*Model, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	m := NewModel(doc.Name,
		WithModelCaseInsensitive(doc.CaseInsensitive),
		WithModelSigmoidalCorrection(doc.SigmoidalCorrection),
	)
	for _, desc := range doc.Descriptors {
		g, err := function.NewWeightedGaussian(desc.Gaussian)
		if err != nil {
			return nil, err
		}
		key := NewKey(desc.Name, doc.CaseInsensitive)
		if _, dup := m.gaussians[key]; dup {
			return nil, errors.NewValidationError("descriptors.name", "collides with another descriptor", desc.Name)
		}
		m.gaussians[key] = g
		if desc.Sigmoidal == nil {
			continue
		}
		s, err := function.NewSigmoidal(*desc.Sigmoidal)
		if err != nil {
			return nil, err
		}
		m.sigmoidals[key] = s
	}
	return m, nil
}

func (m *Model) restore(other *Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = other.name
	m.caseInsensitive = other.caseInsensitive
	m.sigmoidalCorrection = other.sigmoidalCorrection
	m.gaussians = other.gaussians
	m.sigmoidals = other.sigmoidals
}

// MarshalJSON encodes the model as a ModelDocument.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

// UnmarshalJSON decodes and validates a ModelDocument.
func (m *Model) UnmarshalJSON(data []byte) error {
	var doc coremodel.ModelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.NewModelError("UnmarshalJSON", "invalid model document", err)
	}
	other, err := FromDocument(&doc)
	if err != nil {
		return err
	}
	m.restore(other)
	return nil
}

// GobEncode implements gob.GobEncoder.
func (m *Model) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.Document()); err != nil {
		return nil, errors.NewModelError("GobEncode", "failed to encode model", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (m *Model) GobDecode(data []byte) error {
	var doc coremodel.ModelDocument
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return errors.NewModelError("GobDecode", "failed to decode model", err)
	}
	other, err := FromDocument(&doc)
	if err != nil {
		return err
	}
	m.restore(other)
	return nil
}

// SaveModel writes m to path, as JSON for a ".json" extension and gob otherwise.
func SaveModel(m *Model, path string) error {
	if coremodel.FormatFromPath(path) == coremodel.FormatJSON {
		return coremodel.SaveDocument(m.Document(), path)
	}
	return coremodel.SaveModel(m, path)
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	if coremodel.FormatFromPath(path) == coremodel.FormatJSON {
		doc, err := coremodel.LoadDocument(path)
		if err != nil {
			return nil, err
		}
		return FromDocument(doc)
	}
	m := &Model{}
	if err := coremodel.LoadModel(m, path); err != nil {
		return nil, err
	}
	return m, nil
}
