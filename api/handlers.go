package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"

	"geohash-service/cache"
	"geohash-service/database"
	"geohash-service/geohash"
	"geohash-service/geoindex"
	"geohash-service/matching"
	"geohash-service/models"
)

const defaultRetries = 5

// Handler serves the HTTP API. Store and Repo are optional; endpoints that
// need a missing backend answer 503.
type Handler struct {
	Codec   geohash.Codec
	Store   *cache.CellStore
	Repo    *database.LocationRepository
	Indexes map[geoindex.Technique]geoindex.Index

	// Only used when neither Store nor Repo is set.
	nextID atomic.Int64
}

// NewHandler creates a Handler with one empty index per technique.
func NewHandler(codec geohash.Codec, store *cache.CellStore, repo *database.LocationRepository) (*Handler, error) {
	h := &Handler{
		Codec:   codec,
		Store:   store,
		Repo:    repo,
		Indexes: make(map[geoindex.Technique]geoindex.Index),
	}
	for _, technique := range geoindex.Techniques {
		idx, err := geoindex.New(technique, codec.Length)
		if err != nil {
			return nil, err
		}
		h.Indexes[technique] = idx
	}
	return h, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	return strconv.ParseFloat(r.URL.Query().Get(name), 64)
}

func parseLatLon(r *http.Request) (lat, lon float64, ok bool) {
	lat, err := parseFloatParam(r, "lat")
	if err != nil {
		return 0, 0, false
	}
	lon, err = parseFloatParam(r, "lon")
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// Encode handles GET /geohash/encode?lat=&lon=&length=
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(r)
	if !ok {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	codec := h.Codec
	if s := r.URL.Query().Get("length"); s != "" {
		length, err := strconv.ParseUint(s, 10, 8)
		if err != nil || length == 0 {
			http.Error(w, "Invalid length", http.StatusBadRequest)
			return
		}
		codec.Length = uint(length)
	}

	hash, err := codec.Encode(lat, lon)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"geohash": hash})
}

// Decode handles GET /geohash/decode/{hash}
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := h.Codec.Decode(mux.Vars(r)["hash"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"latitude": lat, "longitude": lon})
}

// Neighbors handles GET /geohash/neighbors/{hash}
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, geohash.GetNeighbors(mux.Vars(r)["hash"]))
}

// CreateLocation registers a location in every configured backend.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	hash, err := h.Codec.Encode(loc.Latitude, loc.Longitude)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loc.Geohash = hash

	ctx := r.Context()
	switch {
	case h.Repo != nil:
		var published bool
		err = h.Repo.CreateWith(ctx, &loc, func(stored models.Location) error {
			if err := h.publish(ctx, stored); err != nil {
				return err
			}
			published = true
			return nil
		})
		if err != nil && published {
			// The commit failed after the cache and indexes took the location.
			h.unpublish(ctx, loc)
		}
	case h.Store != nil:
		if loc.ID, err = h.Store.NextID(ctx); err == nil {
			err = h.publish(ctx, loc)
		}
	default:
		loc.ID = h.nextID.Add(1)
		err = h.publish(ctx, loc)
	}

	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			http.Error(w, "Location already exists", http.StatusConflict)
			return
		}
		log.Printf("failed to create location: %v", err)
		http.Error(w, "Failed to create location", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, loc)
}

// publish files loc in the cache and every index. A partial publish is undone
// before the error is returned.
func (h *Handler) publish(ctx context.Context, loc models.Location) error {
	if h.Store != nil {
		if err := h.Store.Add(ctx, loc); err != nil {
			return err
		}
	}

	p := indexPoint(loc)
	for technique, idx := range h.Indexes {
		if err := idx.Insert(p); err != nil {
			h.unpublish(ctx, loc)
			return fmt.Errorf("failed to index location %d with %s: %w", loc.ID, technique, err)
		}
	}
	return nil
}

func (h *Handler) unpublish(ctx context.Context, loc models.Location) {
	if h.Store != nil {
		if _, err := h.Store.Remove(ctx, loc.ID); err != nil {
			log.Printf("failed to uncache location %d: %v", loc.ID, err)
		}
	}
	p := indexPoint(loc)
	for _, idx := range h.Indexes {
		idx.Remove(p)
	}
}

func indexPoint(loc models.Location) geoindex.Point {
	return geoindex.Point{ID: strconv.FormatInt(loc.ID, 10), Lat: loc.Latitude, Lon: loc.Longitude}
}

// GetLocation handles GET /locations/{location_id}
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		http.Error(w, "Database not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["location_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid location ID", http.StatusBadRequest)
		return
	}

	loc, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Location not found", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// NearestLocation handles GET /locations/nearest?lat=&lon=
func (h *Handler) NearestLocation(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(r)
	if !ok {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	var src matching.CandidateSource
	switch {
	case h.Store != nil:
		src = h.Store
	case h.Repo != nil:
		src = repoSource{h.Repo}
	default:
		http.Error(w, "No location backend configured", http.StatusServiceUnavailable)
		return
	}

	length := h.Codec.Length
	if length == 0 {
		length = geohash.DefaultLength
	}
	match, err := matching.FindNearest(r.Context(), src, lat, lon, length)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, match)
	case errors.Is(err, matching.ErrNoCandidates):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, geohash.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("nearest lookup failed: %v", err)
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
	}
}

// repoSource adapts the repository to matching.CandidateSource.
type repoSource struct {
	repo *database.LocationRepository
}

func (s repoSource) Nearby(ctx context.Context, hash string) ([]models.Location, error) {
	cells := append([]string{hash}, geohash.GetNeighbors(hash).Cells()...)
	return s.repo.FindByCells(ctx, cells)
}

// GeoIndexing handles GET /geoindex?lat=&lon=&radius=&technique=&retries=
func (h *Handler) GeoIndexing(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(r)
	if !ok {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	radius := 1.0
	if s := q.Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			http.Error(w, "Invalid radius", http.StatusBadRequest)
			return
		}
		radius = v
	}

	retries := defaultRetries
	if s := q.Get("retries"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			http.Error(w, "Invalid retries", http.StatusBadRequest)
			return
		}
		retries = v
	}

	technique := geoindex.Technique(q.Get("technique"))
	if technique == "" {
		technique = geoindex.GeohashingTechnique
	}
	idx, ok := h.Indexes[technique]
	if !ok {
		http.Error(w, "Unsupported geo-indexing technique", http.StatusBadRequest)
		return
	}

	results, err := geoindex.SearchNearbyWithRetries(idx, geoindex.Point{Lat: lat, Lon: lon}, radius, retries)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"technique": technique,
		"results":   results,
	})
}
