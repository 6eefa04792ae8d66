package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/dog-directory/internal/media"
	"github.com/pribylovaa/dog-directory/internal/models"
)

func newDogsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dogs",
		Short: "Browse and manage dogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newDogsListCommand(a),
		newDogsGetCommand(a),
		newDogsAddCommand(a),
		newDogsUpdateCommand(a),
		newDogsDeleteCommand(a),
		newDogsPedigreeCommand(a),
	)

	return cmd
}

func newDogsListCommand(a *app) *cobra.Command {
	var (
		f         models.DogFilters
		sex, size string
		available string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.Sex = models.Sex(sex)
			f.SizeCategory = models.SizeCategory(size)

			var err error
			if f.IsAvailableForBreeding, err = optionalBool("available", available); err != nil {
				return err
			}

			page, err := a.cl.Directory.Dogs.List(cmd.Context(), f)
			if err != nil {
				return err
			}

			return printJSON(cmd, page)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.BreedID, "breed-id", 0, "breed id")
	fl.StringVar(&sex, "sex", "", "male or female")
	fl.StringVar(&available, "available", "", "available for breeding (true/false)")
	fl.StringVar(&f.Name, "name", "", "name contains")
	fl.StringVar(&f.Voivodeship, "voivodeship", "", "owner's voivodeship")
	fl.StringVar(&f.City, "city", "", "owner's city")
	fl.StringVar(&size, "size", "", "size category: mini, small, medium, large, giant")
	fl.IntVar(&f.FCIGroup, "fci-group", 0, "FCI group (1-10)")
	fl.StringVar(&f.SortBy, "sort", "", "newest or name")
	fl.IntVar(&f.Page, "page", 0, "page number")
	fl.IntVar(&f.Limit, "limit", 0, "page size")

	return cmd
}

func newDogsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a dog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			dog, err := a.cl.Directory.Dogs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printJSON(cmd, dog)
		},
	}
}

// dogFlags — поля собаки, общие для add и update.
type dogFlags struct {
	name, callName, sex, born, color        string
	registration, microchip, sire, dam      string
	healthTests, titles, description, photo string
	breedID                                 int
	available                               bool
}

func (d *dogFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&d.name, "name", "", "registered name")
	fl.StringVar(&d.callName, "call-name", "", "call name")
	fl.StringVar(&d.sex, "sex", "", "male or female")
	fl.StringVar(&d.born, "born", "", "date of birth (YYYY-MM-DD)")
	fl.IntVar(&d.breedID, "breed-id", 0, "breed id")
	fl.StringVar(&d.color, "color", "", "coat color")
	fl.StringVar(&d.registration, "registration", "", "pedigree registration number")
	fl.StringVar(&d.microchip, "microchip", "", "microchip number")
	fl.StringVar(&d.sire, "sire", "", "sire id")
	fl.StringVar(&d.dam, "dam", "", "dam id")
	fl.StringVar(&d.healthTests, "health-tests", "", "health test results")
	fl.StringVar(&d.titles, "titles", "", "show titles")
	fl.StringVar(&d.description, "description", "", "description")
	fl.BoolVar(&d.available, "available", false, "available for breeding")
	fl.StringVar(&d.photo, "photo", "", "image file to upload as the dog's photo")
}

// optional — значение флага, только если он задан явно.
func optional(cmd *cobra.Command, name, v string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	return &v
}

func optionalID(cmd *cobra.Command, name, v string) (*uuid.UUID, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}

	id, err := parseID(v)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func newDogsAddCommand(a *app) *cobra.Command {
	var d dogFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dog to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			born, err := models.ParseDate(d.born)
			if err != nil {
				return fmt.Errorf("%w: born: %v", models.ErrInvalidInput, err)
			}

			in := models.DogCreate{
				Name:               d.name,
				CallName:           optional(cmd, "call-name", d.callName),
				Sex:                models.Sex(d.sex),
				DateOfBirth:        born,
				BreedID:            d.breedID,
				Color:              optional(cmd, "color", d.color),
				RegistrationNumber: optional(cmd, "registration", d.registration),
				MicrochipNumber:    optional(cmd, "microchip", d.microchip),
				HealthTests:        optional(cmd, "health-tests", d.healthTests),
				Titles:             optional(cmd, "titles", d.titles),
				Description:        optional(cmd, "description", d.description),
			}

			if cmd.Flags().Changed("available") {
				in.IsAvailableForBreeding = &d.available
			}

			if in.SireID, err = optionalID(cmd, "sire", d.sire); err != nil {
				return err
			}

			if in.DamID, err = optionalID(cmd, "dam", d.dam); err != nil {
				return err
			}

			if err := in.Validate(); err != nil {
				return err
			}

			if d.photo != "" {
				url, err := a.upload(cmd, media.KindDogs, d.photo)
				if err != nil {
					return err
				}
				in.PhotoURL = &url
			}

			dog, err := a.cl.Directory.Dogs.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			return printJSON(cmd, dog)
		},
	}

	d.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("sex")
	_ = cmd.MarkFlagRequired("born")
	_ = cmd.MarkFlagRequired("breed-id")

	return cmd
}

func newDogsUpdateCommand(a *app) *cobra.Command {
	var d dogFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update your dog (only the given flags are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			in := models.DogUpdate{
				Name:               optional(cmd, "name", d.name),
				CallName:           optional(cmd, "call-name", d.callName),
				Color:              optional(cmd, "color", d.color),
				RegistrationNumber: optional(cmd, "registration", d.registration),
				MicrochipNumber:    optional(cmd, "microchip", d.microchip),
				HealthTests:        optional(cmd, "health-tests", d.healthTests),
				Titles:             optional(cmd, "titles", d.titles),
				Description:        optional(cmd, "description", d.description),
			}

			if cmd.Flags().Changed("available") {
				in.IsAvailableForBreeding = &d.available
			}

			if in.SireID, err = optionalID(cmd, "sire", d.sire); err != nil {
				return err
			}

			if in.DamID, err = optionalID(cmd, "dam", d.dam); err != nil {
				return err
			}

			if err := in.Validate(); err != nil {
				return err
			}

			if d.photo != "" {
				url, err := a.upload(cmd, media.KindDogs, d.photo)
				if err != nil {
					return err
				}
				in.PhotoURL = &url
			}

			dog, err := a.cl.Directory.Dogs.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			return printJSON(cmd, dog)
		},
	}

	d.register(cmd)

	return cmd
}

func newDogsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete your dog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := a.cl.Directory.Dogs.Delete(cmd.Context(), id); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return err
		},
	}
}

func newDogsPedigreeCommand(a *app) *cobra.Command {
	var generations int

	cmd := &cobra.Command{
		Use:   "pedigree <id>",
		Short: "Show a dog's pedigree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			node, err := a.cl.Directory.Dogs.Pedigree(cmd.Context(), id, generations)
			if err != nil {
				return err
			}

			return printJSON(cmd, node)
		},
	}

	cmd.Flags().IntVarP(&generations, "generations", "g", 3, "generations to show (1-5)")

	return cmd
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid id", models.ErrInvalidInput, s)
	}

	return id, nil
}

func optionalBool(name, v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s must be true or false", models.ErrInvalidInput, name)
	}

	return &b, nil
}

// upload — загрузка файла от имени текущего пользователя.
func (a *app) upload(cmd *cobra.Command, kind media.Kind, path string) (string, error) {
	ctx := cmd.Context()

	user, err := a.currentUser(cmd)
	if err != nil {
		return "", err
	}

	up, err := media.New(ctx, a.cfg.Media)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	return up.Upload(ctx, kind, user.ID, f, st.Size(), media.ContentTypeByName(path))
}
