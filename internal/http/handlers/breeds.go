package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/dog-directory/internal/http/errors"
	"github.com/pribylovaa/dog-directory/internal/models"
)

func (h *Handlers) ListBreeds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := models.BreedFilters{
		Q:            q.Get("q"),
		SizeCategory: models.SizeCategory(q.Get("size_category")),
	}

	var err error
	if f.FCIGroup, err = queryInt(q, "fci_group"); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if f.Page, f.Limit, err = pageParams(q); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.Directory.Breeds.List(r.Context(), f)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetBreed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, invalidArgument("id must be an integer"))
		return
	}

	breed, err := h.Directory.Breeds.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, breed)
}

func (h *Handlers) ListBreedGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Directory.Breeds.Groups(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}
