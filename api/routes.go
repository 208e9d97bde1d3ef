package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RegisterRoutes builds the router. Access logs go to logOut when it is not nil.
func RegisterRoutes(h *Handler, logOut io.Writer) http.Handler {
	router := mux.NewRouter()

	// Codec endpoints
	router.HandleFunc("/geohash/encode", h.Encode).Methods("GET")
	router.HandleFunc("/geohash/decode/{hash}", h.Decode).Methods("GET")
	router.HandleFunc("/geohash/neighbors/{hash}", h.Neighbors).Methods("GET")

	// Location endpoints
	router.HandleFunc("/locations", h.CreateLocation).Methods("POST")
	router.HandleFunc("/locations/nearest", h.NearestLocation).Methods("GET")
	router.HandleFunc("/locations/{location_id:[0-9]+}", h.GetLocation).Methods("GET")

	router.HandleFunc("/geoindex", h.GeoIndexing).Methods("GET")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	var handler http.Handler = cors(router)
	if logOut != nil {
		handler = handlers.LoggingHandler(logOut, handler)
	}
	return handler
}
