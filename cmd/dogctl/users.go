package main

import (
	"github.com/spf13/cobra"

	"github.com/pribylovaa/dog-directory/internal/media"
	"github.com/pribylovaa/dog-directory/internal/models"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse owners and breeders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newUsersListCommand(a), newUsersGetCommand(a), newUsersDogsCommand(a))

	return cmd
}

func newUsersListCommand(a *app) *cobra.Command {
	var (
		f       models.UserFilters
		breeder string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if f.IsBreeder, err = optionalBool("breeder", breeder); err != nil {
				return err
			}

			page, err := a.cl.Directory.Users.List(cmd.Context(), f)
			if err != nil {
				return err
			}

			return printJSON(cmd, page)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.Q, "query", "q", "", "search by name or kennel")
	fl.StringVar(&breeder, "breeder", "", "breeders only (true/false)")
	fl.StringVar(&f.City, "city", "", "city")
	fl.StringVar(&f.Voivodeship, "voivodeship", "", "voivodeship")
	fl.IntVar(&f.Page, "page", 0, "page number")
	fl.IntVar(&f.Limit, "limit", 0, "page size")

	return cmd
}

func newUsersGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			user, err := a.cl.Directory.Users.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printJSON(cmd, user)
		},
	}
}

func newUsersDogsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dogs <id>",
		Short: "List a user's dogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			dogs, err := a.cl.Directory.Users.Dogs(cmd.Context(), id)
			if err != nil {
				return err
			}

			if dogs == nil {
				dogs = []models.Dog{}
			}

			return printJSON(cmd, dogs)
		},
	}
}

func newMeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Manage your own profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMeUpdateCommand(a), newMeAvatarCommand(a))

	return cmd
}

func newMeUpdateCommand(a *app) *cobra.Command {
	var (
		firstName, lastName, phone, city string
		voivodeship, bio, kennel         string
		breeder                          bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile (only the given flags are sent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := models.UserUpdate{
				FirstName:   optional(cmd, "first-name", firstName),
				LastName:    optional(cmd, "last-name", lastName),
				Phone:       optional(cmd, "phone", phone),
				City:        optional(cmd, "city", city),
				Voivodeship: optional(cmd, "voivodeship", voivodeship),
				Bio:         optional(cmd, "bio", bio),
				KennelName:  optional(cmd, "kennel", kennel),
			}

			if cmd.Flags().Changed("breeder") {
				in.IsBreeder = &breeder
			}

			user, err := a.cl.Directory.Users.UpdateMe(cmd.Context(), in)
			if err != nil {
				return err
			}

			return printJSON(cmd, user)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&firstName, "first-name", "", "first name")
	fl.StringVar(&lastName, "last-name", "", "last name")
	fl.StringVar(&phone, "phone", "", "phone number")
	fl.StringVar(&city, "city", "", "city")
	fl.StringVar(&voivodeship, "voivodeship", "", "voivodeship")
	fl.StringVar(&bio, "bio", "", "about you")
	fl.StringVar(&kennel, "kennel", "", "kennel name")
	fl.BoolVar(&breeder, "breeder", false, "you are a breeder")

	return cmd
}

func newMeAvatarCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := a.upload(cmd, media.KindAvatars, args[0])
			if err != nil {
				return err
			}

			user, err := a.cl.Directory.Users.UpdateMe(cmd.Context(), models.UserUpdate{AvatarURL: &url})
			if err != nil {
				return err
			}

			return printJSON(cmd, user)
		},
	}
}
