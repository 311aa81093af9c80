package queue

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

func requireCBOR(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, cborContentType) {
		writeProblemCBOR(w, http.StatusUnsupportedMediaType, "request content-type must be application/cbor")
		return false
	}
	return true
}

func writeCBOR(w http.ResponseWriter, status int, body any) {
	data, err := cbor.Marshal(body)
	if err != nil {
		writeProblemCBOR(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", cborContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeProblem writes an RFC 9457 Problem Details body. It is always
// CBOR-encoded, including for errors from the JSON GET endpoints.
func writeProblem(w http.ResponseWriter, status int, detail string) {
	writeProblemCBOR(w, status, detail)
}

func writeProblemCBOR(w http.ResponseWriter, status int, detail string) {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	data, err := cbor.Marshal(pd)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", cborContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
