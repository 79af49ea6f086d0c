package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"logistics-engine/internal/domain"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps engine errors onto HTTP statuses. Unexpected errors
// are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEventCycle), errors.Is(err, domain.ErrDuplicateEvent):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownSpikeType), errors.Is(err, domain.ErrInvalidSpike):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// allowMethod writes a 405 and returns false when r does not use method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func parseInt64(raw, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	return parseInt64(r.URL.Query().Get(name), name)
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseInt64(r.PathValue(name), name)
}

// decodeBody reads exactly one JSON object with no unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}
