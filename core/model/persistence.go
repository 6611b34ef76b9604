package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/pmpo/pkg/errors"
)

// Format selects the on-disk encoding of a model.
type Format string

const (
	// FormatGob is the binary encoding/gob form.
	FormatGob Format = "gob"
	// FormatJSON is the ModelDocument JSON form.
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension; ".json" means JSON, anything else gob.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatGob
}

// SaveModel gob-encodes model into filename.
//
// Example:
//
//	m, _ := builder.Model()
//	err := model.SaveModel(m, "cns.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()
	return SaveModelToWriter(model, file)
}

// LoadModel gob-decodes filename into model, which must be a pointer.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()
	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes model into w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.NewModelError("SaveModel", "failed to encode model", err)
	}
	return nil
}

// LoadModelFromReader gob-decodes r into model.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.NewModelError("LoadModel", "failed to decode model", err)
	}
	return nil
}

// SaveDocument writes doc as indented JSON to filename.
func SaveDocument(doc *ModelDocument, filename string) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := doc.ToJSON()
	if err != nil {
		return errors.NewModelError("SaveDocument", "failed to encode document", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", filename)
	}
	return nil
}

// LoadDocument reads and validates a JSON document.
func LoadDocument(filename string) (*ModelDocument, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	doc := &ModelDocument{}
	if err := doc.FromJSON(data); err != nil {
		return nil, err
	}
	return doc, nil
}
