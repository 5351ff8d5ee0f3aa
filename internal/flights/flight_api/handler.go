package flight_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"nudem-backend/internal/flights"
	"nudem-backend/internal/logger"
)

type Handler struct {
	Client *flights.Client
	Logger *logger.Logger
}

func NewHandler(client *flights.Client, log *logger.Logger) *Handler {
	return &Handler{Client: client, Logger: log}
}

// Search handles GET /api/flights?departure=&arrival=&date=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	departure := q.Get("departure")
	arrival := q.Get("arrival")
	date := q.Get("date")

	if departure == "" || arrival == "" || date == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "departure, arrival and date are required"})
		return
	}

	results, err := h.Client.Search(r.Context(), departure, arrival, date)
	if err != nil {
		h.Logger.Error("FLIGHTS", fmt.Sprintf("aggregator search failed: %v", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "flight search unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
