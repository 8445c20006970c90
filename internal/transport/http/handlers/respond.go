package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vedran77/lax/internal/rpc"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeEnvelope(w http.ResponseWriter, status int, resp *rpc.Response) {
	writeJSON(w, status, resp)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, rpc.Failure(message))
}
