package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrMissingBody = errors.New("missing request body")

// ParseJSON decodes the request body. Numbers landing in interface values
// are kept as json.Number so they round-trip unchanged.
func ParseJSON(r *http.Request, model any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrMissingBody
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(model); err != nil {
		return fmt.Errorf("failed to parse JSON body: %w", err)
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg, "detail": msg}; detail is what browser clients read.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, map[string]string{
		"error":  err.Error(),
		"detail": err.Error(),
	})
}
