package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/dog-directory/internal/models"
	"github.com/pribylovaa/dog-directory/internal/session"
)

// passwordFlags — пароль флагом или первой строкой stdin.
type passwordFlags struct {
	password string
	stdin    bool
}

func (p *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.password, "password", "", "account password")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "read the password from stdin")
}

func (p *passwordFlags) value(in io.Reader) (string, error) {
	if !p.stdin {
		return p.password, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCommand(a *app) *cobra.Command {
	var (
		email string
		pw    passwordFlags
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := pw.value(cmd.InOrStdin())
			if err != nil {
				return err
			}

			user, err := a.cl.Session.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			return printJSON(cmd, user)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	pw.register(cmd)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var (
		req models.RegisterRequest
		pw  passwordFlags
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := pw.value(cmd.InOrStdin())
			if err != nil {
				return err
			}
			req.Password = password

			user, err := a.cl.Session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}

			return printJSON(cmd, user)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	pw.register(cmd)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cl.Session.Logout(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.currentUser(cmd)
			if err != nil {
				return err
			}

			if !verbose {
				return printJSON(cmd, user)
			}

			info, err := a.cl.Session.Inspect(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, struct {
				User  *models.User      `json:"user"`
				Token session.TokenInfo `json:"token"`
			}{User: user, Token: info})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also show access token claims")

	return cmd
}

// currentUser восстанавливает сессию; без неё — errNotLoggedIn.
func (a *app) currentUser(cmd *cobra.Command) (*models.User, error) {
	user, ok := a.cl.Session.Restore(cmd.Context())
	if !ok {
		return nil, errNotLoggedIn
	}

	return user, nil
}
