package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrLoadFailed marks documents the loader could not interpret.
var ErrLoadFailed = errors.New("document failed to load")

// LoadError is the loader's in-band failure marker: {"error":{"message":...}}.
type LoadError struct {
	Message string `json:"message"`
}

func (e *LoadError) Error() string {
	return e.Message
}

// Unwrap lets callers test for ErrLoadFailed with errors.Is.
func (e *LoadError) Unwrap() error {
	return ErrLoadFailed
}

// Decode parses the loader's JSON output. Malformed JSON is reported as a
// load failure; a well-formed error marker is returned as a Document whose
// Err is non-nil so callers can decide how to surface it.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("decode document: %v", err)}
	}
	return &doc, nil
}

// Err reports the load failure carried by the document, if any.
func (d *Document) Err() error {
	if d == nil {
		return &LoadError{Message: "no document"}
	}
	if d.Error != nil {
		msg := d.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &LoadError{Message: msg}
	}
	return nil
}

// Stats counts the records of each kind in the tree.
func (d *Document) Stats() map[string]int {
	counts := make(map[string]int)
	if d == nil {
		return counts
	}
	var visit func(r *Record)
	visit = func(r *Record) {
		counts[r.Kind().String()]++
		for _, c := range r.Children {
			visit(c)
		}
	}
	for _, r := range d.Records {
		visit(r)
	}
	return counts
}
