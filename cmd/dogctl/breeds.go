package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/dog-directory/internal/models"
)

func newBreedsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breeds",
		Short: "Browse FCI breeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBreedsListCommand(a), newBreedsGetCommand(a), newBreedsGroupsCommand(a))

	return cmd
}

func newBreedsListCommand(a *app) *cobra.Command {
	var (
		f    models.BreedFilters
		size string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List breeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.SizeCategory = models.SizeCategory(size)

			page, err := a.cl.Directory.Breeds.List(cmd.Context(), f)
			if err != nil {
				return err
			}

			return printJSON(cmd, page)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.Q, "query", "q", "", "search by name")
	fl.IntVar(&f.FCIGroup, "fci-group", 0, "FCI group (1-10)")
	fl.StringVar(&size, "size", "", "size category: mini, small, medium, large, giant")
	fl.IntVar(&f.Page, "page", 0, "page number")
	fl.IntVar(&f.Limit, "limit", 0, "page size (up to 200)")

	return cmd
}

func newBreedsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a breed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a valid breed id", models.ErrInvalidInput, args[0])
			}

			breed, err := a.cl.Directory.Breeds.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return printJSON(cmd, breed)
		},
	}
}

func newBreedsGroupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List FCI groups with breed counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := a.cl.Directory.Breeds.Groups(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, groups)
		},
	}
}
