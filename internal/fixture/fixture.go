// Package fixture provides a small labelled compound dataset shared by tests.
//
// 40 entities alternate good ("yes") and bad ("no"); the last two carry the
// labels "maybe" and missing. Descriptors:
//
//	A      separates the groups, has one missing value
//	B      separates the groups best, almost collinear with A
//	C      separates the groups weakly, has one missing value
//	NOISE  does not separate the groups
//	SPARSE has too few good values to be tested
//	FLAT   is constant in the good group
package fixture

import (
	"bytes"
	_ "embed"

	"github.com/YuminosukeSato/pmpo/dataset"
)

// LabelColumn is the raw good/bad column of the compound dataset.
const LabelColumn = "Active"

// NameColumn holds entity identifiers.
const NameColumn = "Name"

//go:embed compounds.csv
var compoundsCSV []byte

// CompoundsCSV returns the raw CSV text.
func CompoundsCSV() []byte {
	return append([]byte(nil), compoundsCSV...)
}

// Compounds parses the embedded compound dataset.
func Compounds() *dataset.Dataset {
	ds, err := dataset.ReadCSV(bytes.NewReader(compoundsCSV))
	if err != nil {
		panic(err)
	}
	return ds
}
