package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/dog-directory/internal/http/errors"
	"github.com/pribylovaa/dog-directory/internal/models"
)

const defaultGenerations = 3

func (h *Handlers) ListDogs(w http.ResponseWriter, r *http.Request) {
	f, err := dogFilters(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.Directory.Dogs.List(r.Context(), f)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetDog(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	dog, err := h.Directory.Dogs.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dog)
}

func (h *Handlers) GetPedigree(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	generations, err := queryInt(r.URL.Query(), "generations")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if generations == 0 {
		generations = defaultGenerations
	}

	node, err := h.Directory.Dogs.Pedigree(r.Context(), id, generations)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

func dogFilters(r *http.Request) (models.DogFilters, error) {
	q := r.URL.Query()

	f := models.DogFilters{
		Sex:          models.Sex(q.Get("sex")),
		Name:         q.Get("name"),
		Voivodeship:  q.Get("voivodeship"),
		City:         q.Get("city"),
		SizeCategory: models.SizeCategory(q.Get("size_category")),
		SortBy:       q.Get("sort_by"),
	}

	var err error
	if f.BreedID, err = queryInt(q, "breed_id"); err != nil {
		return f, err
	}

	if f.FCIGroup, err = queryInt(q, "fci_group"); err != nil {
		return f, err
	}

	if f.IsAvailableForBreeding, err = queryBool(q, "is_available_for_breeding"); err != nil {
		return f, err
	}

	if f.Page, f.Limit, err = pageParams(q); err != nil {
		return f, err
	}

	return f, nil
}
