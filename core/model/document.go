package model

import (
	"encoding/json"
	"strings"

	"github.com/YuminosukeSato/pmpo/function"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// ModelType identifies pMPO documents.
const ModelType = "pMPO"

// DocumentVersion is the current document schema version.
const DocumentVersion = "1"

// DescriptorDocument holds the two functions fitted for one descriptor.
type DescriptorDocument struct {
	Name     string                  `json:"name"`
	Gaussian function.GaussianParams `json:"gaussian"`

	// Sigmoidal is nil when the descriptor has no correction.
	Sigmoidal *function.SigmoidalParams `json:"sigmoidal,omitempty"`
}

// ModelDocument is the portable JSON form of a pMPO model.
type ModelDocument struct {
	// ModelType is always "pMPO".
	ModelType string `json:"model_type"`

	// Version is the schema version, checked on load.
	Version string `json:"version"`

	Name                string `json:"name"`
	SigmoidalCorrection bool   `json:"sigmoidal_correction"`
	CaseInsensitive     bool   `json:"case_insensitive"`

	// Descriptors are sorted by name.
	Descriptors []DescriptorDocument `json:"descriptors"`

	// Hyperparameters records the builder settings the model was produced with.
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// Metadata holds free-form build information such as the build id.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON encodes the document with indentation.
func (d *ModelDocument) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromJSON decodes data into d and validates it.
func (d *ModelDocument) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, d); err != nil {
		return errors.NewModelError("FromJSON", "invalid model document", err)
	}
	return d.Validate()
}

// Validate checks the header and that every function is constructible.
func (d *ModelDocument) Validate() error {
	if d.ModelType != ModelType {
		return errors.NewValidationError("model_type", "must be "+ModelType, d.ModelType)
	}
	if d.Version != DocumentVersion {
		return errors.NewValidationError("version", "unsupported document version", d.Version)
	}
	seen := make(map[string]struct{}, len(d.Descriptors))
	for _, desc := range d.Descriptors {
		if desc.Name == "" {
			return errors.NewValidationError("descriptors.name", "is required", desc.Name)
		}
		// Case-insensitive models store names upper-cased.
		key := desc.Name
		if d.CaseInsensitive {
			key = strings.ToUpper(key)
		}
		if _, dup := seen[key]; dup {
			return errors.NewValidationError("descriptors.name", "is duplicated", desc.Name)
		}
		seen[key] = struct{}{}
		if _, err := function.NewWeightedGaussian(desc.Gaussian); err != nil {
			return errors.Wrapf(err, "descriptor %s", desc.Name)
		}
		if desc.Sigmoidal == nil {
			continue
		}
		if _, err := function.NewSigmoidal(*desc.Sigmoidal); err != nil {
			return errors.Wrapf(err, "descriptor %s", desc.Name)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *ModelDocument) Clone() *ModelDocument {
	clone := &ModelDocument{
		ModelType:           d.ModelType,
		Version:             d.Version,
		Name:                d.Name,
		SigmoidalCorrection: d.SigmoidalCorrection,
		CaseInsensitive:     d.CaseInsensitive,
		Descriptors:         make([]DescriptorDocument, len(d.Descriptors)),
		Hyperparameters:     make(map[string]interface{}, len(d.Hyperparameters)),
		Metadata:            make(map[string]interface{}, len(d.Metadata)),
	}
	for i, desc := range d.Descriptors {
		if desc.Sigmoidal != nil {
			s := *desc.Sigmoidal
			desc.Sigmoidal = &s
		}
		clone.Descriptors[i] = desc
	}
	for k, v := range d.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range d.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
