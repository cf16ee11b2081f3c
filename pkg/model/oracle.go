package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// ResultType is the shape of content the oracle chose for a query
type ResultType string

const (
	ResultTypeImage ResultType = "IMAGE"
	ResultTypePoem  ResultType = "POEM"
	ResultTypeSonic ResultType = "SONIC"
)

// ResultTypes lists every shape the oracle may answer with
var ResultTypes = []ResultType{
	ResultTypeImage,
	ResultTypePoem,
	ResultTypeSonic,
}

// Validate checks if the result type is one of the known shapes
func (t ResultType) Validate() error {
	switch t {
	case ResultTypeImage, ResultTypePoem, ResultTypeSonic:
		return nil
	default:
		return goerr.Wrap(ErrInvalidResultType, "unknown result type", goerr.V("type", string(t)))
	}
}

// OracleResult is a single answer of the oracle
type OracleResult struct {
	Type ResultType `json:"type"`
	Text string     `json:"text"`

	// ImageURL is a data URI of the synthesized image. Empty when the type
	// is not IMAGE, or when synthesis was skipped or failed.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Validate checks the invariants of an oracle result
func (r *OracleResult) Validate() error {
	if r == nil {
		return goerr.Wrap(ErrInvalidResult, "result is nil")
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.Text == "" {
		return goerr.Wrap(ErrInvalidResult, "text is empty", goerr.V("type", string(r.Type)))
	}
	if r.ImageURL != "" && r.Type != ResultTypeImage {
		return goerr.Wrap(ErrInvalidResult, "image url is set on non-image result", goerr.V("type", string(r.Type)))
	}
	return nil
}

// HasImage reports whether the synthesized image is attached
func (r *OracleResult) HasImage() bool {
	return r.Type == ResultTypeImage && r.ImageURL != ""
}
