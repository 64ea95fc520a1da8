package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version stamped on every response.
// Clients key off the "v" field, do not rename it.
const envelopeVersion = 1

// successEnvelope wraps successful response bodies.
type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope wraps error response bodies.
type errorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the standard
// envelope. Error bodies (APIError) keep their code/message/details
// alongside the flat error string.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if len(status) > 0 && status[0] >= '4' {
		msg := "request failed"
		if err, ok := v.(error); ok {
			msg = err.Error()
		}
		return &errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   msg,
		}, nil
	}

	return &successEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
