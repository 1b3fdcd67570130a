package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes exposes the read-only product endpoints; the storefront router
// mounts them under /products.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Get("/{id}", s.get)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}
