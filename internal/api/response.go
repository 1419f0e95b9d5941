package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/vietddude/catalog/internal/catalog"
	"github.com/vietddude/catalog/internal/core/domain"
)

const (
	resourceType = "products"
	contentType  = "application/vnd.api+json"
)

type attributes struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type resource struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Attributes attributes `json:"attributes"`
}

type document struct {
	Data any   `json:"data"`
	Meta *meta `json:"meta,omitempty"`
}

type meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

type apiError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type errorDocument struct {
	Errors []apiError `json:"errors"`
}

// productInput accepts either a flat body or a JSON:API resource body.
type productInput struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Data  *struct {
		Attributes struct {
			Name  string   `json:"name"`
			Price *float64 `json:"price"`
		} `json:"attributes"`
	} `json:"data"`
}

func (in productInput) product() domain.Product {
	name, price := in.Name, in.Price
	if in.Data != nil {
		name, price = in.Data.Attributes.Name, in.Data.Attributes.Price
	}
	p := domain.Product{Name: name}
	if price != nil {
		p.Price = *price
	}
	return p
}

func toResource(p domain.Product) resource {
	return resource{
		Type:       resourceType,
		ID:         strconv.FormatInt(p.ID, 10),
		Attributes: attributes{Name: p.Name, Price: p.Price},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, errorDocument{Errors: []apiError{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}})
}

// writeServiceError maps service errors to responses. Retry internals are
// never exposed to the client.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found", "")
	case errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, domain.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "an error occurred while trying to "+action, "")
	}
}
