package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/dog-directory/internal/http/errors"
	"github.com/pribylovaa/dog-directory/internal/models"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := models.UserFilters{
		Q:           q.Get("q"),
		City:        q.Get("city"),
		Voivodeship: q.Get("voivodeship"),
	}

	var err error
	if f.IsBreeder, err = queryBool(q, "is_breeder"); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if f.Page, f.Limit, err = pageParams(q); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	page, err := h.Directory.Users.List(r.Context(), f)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Directory.Users.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) ListUserDogs(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	dogs, err := h.Directory.Users.Dogs(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if dogs == nil {
		dogs = []models.Dog{}
	}

	writeJSON(w, http.StatusOK, dogs)
}
