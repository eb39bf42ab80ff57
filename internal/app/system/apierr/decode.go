package apierr

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into v. Malformed, empty, or
// oversized bodies become validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return Validation("request body is required", nil)
		case errors.As(err, &tooBig):
			return Validation("request body is too large", nil)
		default:
			return &Error{Kind: KindValidation, Message: "request body is not valid JSON", Err: err}
		}
	}
	return nil
}
