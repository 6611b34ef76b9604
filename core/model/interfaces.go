// Package model defines the interfaces shared by pMPO scoring models and the
// serialisable document they are persisted as.
package model

// Scorer computes the desirability score of one entity from its descriptor values.
type Scorer interface {
	// Score returns the additive pMPO score. Unknown descriptors and NaN values are ignored.
	Score(values map[string]float64) float64
}

// Describer exposes the model identity.
type Describer interface {
	Name() string
	Descriptors() []string
	String() string
}

// Documenter converts a model to and from its portable document form.
type Documenter interface {
	Document() *ModelDocument
}

// ScoringModel is what the CLI and the HTTP server need from a model.
type ScoringModel interface {
	Scorer
	Describer
	Documenter
}
