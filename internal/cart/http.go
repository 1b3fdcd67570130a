package cart

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

type Server struct {
	Store   *Store
	Catalog catalog.Store
	JWT     *TokenMaker
	Log     *zap.Logger
}

const (
	maxBodyBytes = 1 << 20
	sessionTTL   = 30 * 24 * time.Hour
)

type sessionResp struct {
	ShopperID string `json:"shopper_id"`
	Token     string `json:"token"`
}

// handleSession mints a guest shopper token. The front end calls this
// once and keeps the token; the cart lives under the shopper id.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := "s_" + uuid.NewString()

	token, err := s.JWT.New(id, sessionTTL)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("mint session token failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, sessionResp{ShopperID: id, Token: token})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.Get(r.Context(), owner))
}

type addReq struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}

	var req addReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "id required", nil)
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	it := Item{ID: req.ID, Name: req.Name, Price: req.Price, Qty: req.Qty}

	// The add control carries name and price, but the catalog's word wins
	// when it knows the product.
	if s.Catalog != nil {
		p, found, err := s.Catalog.Get(r.Context(), req.ID)
		switch {
		case err != nil:
			if s.Log != nil {
				s.Log.Warn("catalog lookup failed, using client values", zap.Error(err), zap.String("id", req.ID))
			}
		case found:
			it.Name = p.Name
			it.Price = p.Price
		}
	}

	kit.WriteJSON(w, http.StatusOK, s.Store.Add(r.Context(), owner, it))
}

type setQtyReq struct {
	Qty int `json:"qty"`
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}

	var req setQtyReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	id := chi.URLParam(r, "id")
	kit.WriteJSON(w, http.StatusOK, s.Store.SetQuantity(r.Context(), owner, id, req.Qty))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}

	id := chi.URLParam(r, "id")
	kit.WriteJSON(w, http.StatusOK, s.Store.Remove(r.Context(), owner, id))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.Clear(r.Context(), owner))
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, BadgeFor(s.Store.Get(r.Context(), owner)))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, SidebarFor(s.Store.Get(r.Context(), owner)))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	owner, ok := ShopperFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no shopper", nil)
		return
	}

	sum, err := s.Store.Checkout(r.Context(), owner)
	if errors.Is(err, ErrEmptyCart) {
		kit.WriteError(w, r, http.StatusConflict, "cart is empty", nil)
		return
	}
	if err != nil {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, sum)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
