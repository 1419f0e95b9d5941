package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/vietddude/catalog/internal/core/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	p := in.product()
	slog.Info("Creating product", "name", p.Name, "request_id", RequestID(r.Context()))

	created, err := s.service.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, "create the product", err)
		return
	}
	writeJSON(w, http.StatusCreated, document{Data: toResource(created)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "obtain the product", err)
		return
	}
	writeJSON(w, http.StatusOK, document{Data: toResource(p)})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := s.service.Update(r.Context(), id, in.product())
	if err != nil {
		writeServiceError(w, "update the product", err)
		return
	}
	writeJSON(w, http.StatusOK, document{Data: toResource(updated)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.service.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, "delete the product", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "product not found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]string{"message": "product deleted"},
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	page, err := s.service.List(r.Context(), req)
	if err != nil {
		writeServiceError(w, "list the products", err)
		return
	}

	data := make([]resource, 0, len(page.Items))
	for _, p := range page.Items {
		data = append(data, toResource(p))
	}
	writeJSON(w, http.StatusOK, document{
		Data: data,
		Meta: &meta{
			Total:      page.Total,
			Page:       page.Index,
			Size:       page.Size,
			TotalPages: page.TotalPages(),
		},
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id", "")
		return 0, false
	}
	return id, true
}

func pageRequest(r *http.Request) (domain.PageRequest, error) {
	req := domain.PageRequest{Index: 0, Size: defaultPageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, err
		}
		req.Index = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, err
		}
		req.Size = n
	}
	if req.Size > maxPageSize {
		return req, fmt.Errorf("%w: size must be <= %d, got %d", domain.ErrInvalidPage, maxPageSize, req.Size)
	}
	return req, req.Validate()
}
