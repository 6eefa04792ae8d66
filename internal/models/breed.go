package models

import "net/url"

// Breed — порода по классификации FCI.
type Breed struct {
	ID            int           `json:"id"`
	NamePL        string        `json:"name_pl"`
	NameEN        *string       `json:"name_en"`
	FCINumber     *int          `json:"fci_number"`
	FCIGroup      *int          `json:"fci_group"`
	FCISection    *int          `json:"fci_section"`
	SizeCategory  *SizeCategory `json:"size_category"`
	DescriptionPL *string       `json:"description_pl"`
	ImageURL      *string       `json:"image_url"`
}

// BreedInfo — краткие сведения о породе внутри карточки собаки.
type BreedInfo struct {
	ID       int     `json:"id"`
	NamePL   string  `json:"name_pl"`
	NameEN   *string `json:"name_en"`
	FCIGroup *int    `json:"fci_group"`
}

// FCIGroup — группа FCI и число пород в ней.
type FCIGroup struct {
	FCIGroup   int `json:"fci_group"`
	BreedCount int `json:"breed_count"`
}

// BreedFilters — фильтры списка пород.
type BreedFilters struct {
	Q            string       `validate:"omitempty,max=100"`
	FCIGroup     int          `validate:"omitempty,min=1,max=10"`
	SizeCategory SizeCategory `validate:"omitempty,oneof=mini small medium large giant"`
	Page         int          `validate:"omitempty,min=1"`
	Limit        int          `validate:"omitempty,min=1,max=200"`
}

func (f *BreedFilters) Validate() error { return validateStruct(f) }

func (f BreedFilters) Values() url.Values {
	v := url.Values{}
	v.Set("q", f.Q)
	setPositive(v, "fci_group", f.FCIGroup)
	v.Set("size_category", string(f.SizeCategory))
	setPositive(v, "page", f.Page)
	setPositive(v, "limit", f.Limit)

	return v
}
