package health

import (
	"encoding/json"
	"net/http"
)

// ServiceName appears in the health payload and startup logs.
const ServiceName = "RampageAI Chatbot API"

type status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler always reports OK; it does not depend on provider reachability.
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(status{
		Status:  "OK",
		Message: ServiceName + " is running",
	})
}
