package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/kvrest/pkg/kv"
)

// Server wraps a kv.Store and exposes HTTP endpoints for KV operations.
// Values cross the wire through Codec.
type Server[A any] struct {
	Store  kv.Store[A]
	Codec  kv.Codec[A]
	Logger hclog.Logger
}

// NewServer creates a new HTTP server with the given store and codec.
func NewServer[A any](store kv.Store[A], codec kv.Codec[A], logger hclog.Logger) *Server[A] {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server[A]{
		Store:  store,
		Codec:  codec,
		Logger: logger.Named("http"),
	}
}

// RegisterRoutes registers all HTTP handlers on the given router.
func (s *Server[A]) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/insert", s.handleInsert).Methods(http.MethodPost)
	r.HandleFunc("/read", s.handleRead).Methods(http.MethodGet)
	r.HandleFunc("/has", s.handleHas).Methods(http.MethodGet)
	r.HandleFunc("/keys", s.handleKeys).Methods(http.MethodGet)
	r.HandleFunc("/delete", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/clear", s.handleClear).Methods(http.MethodDelete)
}

// requireKey returns the key query parameter, or writes a 400 if it is missing.
func requireKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return "", false
	}
	return key, true
}

// handleInsert handles POST /insert?key=foo with the raw value as body.
// The body is decoded before the store is touched.
func (s *Server[A]) handleInsert(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	value, err := s.Codec.Parse(body)
	if err != nil {
		writeOutcome(s.Logger, w, r, kv.Fail[any](kv.AsInvalidData(err).WithKey(key)))
		return
	}

	err = s.Store.Insert(r.Context(), key, value)
	writeOutcome(s.Logger, w, r, kv.From[any](nil, err))
}

// handleRead handles GET /read?key=foo.
// On success the dumped value is written as is, with the codec's content type.
func (s *Server[A]) handleRead(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}

	value, err := s.Store.Read(r.Context(), key)
	out := kv.From(value, err)
	if !out.IsOk() {
		writeOutcome(s.Logger, w, r, out)
		return
	}

	data, err := s.Codec.Dump(value)
	if err != nil {
		writeOutcome(s.Logger, w, r, kv.Fail[A](kv.AsInvalidData(err).WithKey(key)))
		return
	}

	w.Header().Set("Content-Type", s.Codec.ContentType())
	w.WriteHeader(Status(out))
	w.Write(data)
}

// handleHas handles GET /has?key=foo.
func (s *Server[A]) handleHas(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	exists, err := s.Store.Has(r.Context(), key)
	writeOutcome(s.Logger, w, r, kv.From(exists, err))
}

// handleKeys handles GET /keys.
func (s *Server[A]) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Store.Keys(r.Context())
	if err == nil && keys == nil {
		keys = []string{}
	}
	writeOutcome(s.Logger, w, r, kv.From(keys, err))
}

// handleDelete handles DELETE /delete?key=foo.
func (s *Server[A]) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	err := s.Store.Delete(r.Context(), key)
	writeOutcome(s.Logger, w, r, kv.From(true, err))
}

// handleClear handles DELETE /clear.
func (s *Server[A]) handleClear(w http.ResponseWriter, r *http.Request) {
	err := s.Store.Clear(r.Context())
	writeOutcome(s.Logger, w, r, kv.From(true, err))
}

// writeOutcome writes the JSON encoding of either side of out,
// with the status chosen by Status.
func writeOutcome[T any](logger hclog.Logger, w http.ResponseWriter, r *http.Request, out kv.Outcome[T]) {
	value, rerr := out.Get()
	status := Status(out)
	if rerr == nil {
		writeJSON(w, status, value)
		return
	}

	if status == http.StatusInternalServerError {
		logger.Error("store failure", "method", r.Method, "path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()), "error", rerr)
	}
	writeJSON(w, status, rerr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
