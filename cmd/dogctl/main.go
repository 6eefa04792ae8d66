// dogctl — консольный клиент каталога собак: вход, просмотр и редактирование
// собак, пользователей и пород. Пара токенов хранится между запусками
// (store.driver), истёкший access-токен обновляется прозрачно.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/dog-directory/internal/apiclient"
	"github.com/pribylovaa/dog-directory/internal/clients"
	"github.com/pribylovaa/dog-directory/internal/config"
	"github.com/pribylovaa/dog-directory/internal/pkg/log"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const msgSessionExpired = "session expired, log in again"

var errNotLoggedIn = errors.New("not logged in")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run выполняет команду и возвращает код выхода.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && a.log != nil {
		a.log.Warn("clients_close_failed", slog.String("err", cerr.Error()))
	}

	if err != nil {
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}

	return 0
}

// app — состояние одного запуска: конфиг, логгер и клиенты поднимаются
// в PersistentPreRunE корневой команды.
type app struct {
	configPath string
	debug      bool

	cfg *config.Config
	log *slog.Logger
	cl  *clients.Clients
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dogctl",
		Short:         "Command-line client for the dog directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "log requests to stderr")

	cmd.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newDogsCommand(a),
		newUsersCommand(a),
		newMeCommand(a),
		newBreedsCommand(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = setupLogger(cfg.Env, cmd.ErrOrStderr(), a.debug)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.Into(ctx, a.log)
	cmd.SetContext(ctx)

	cl, err := clients.New(ctx, *cfg, a.log, clients.Options{})
	if err != nil {
		return err
	}
	a.cl = cl

	return nil
}

func (a *app) close() error {
	if a.cl == nil {
		return nil
	}

	return a.cl.Close()
}

// printJSON — вывод результата команды.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatError — сообщение об ошибке для stderr.
func formatError(err error) string {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return msgSessionExpired
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("error: %s (HTTP %d)", apiErr.Message, apiErr.StatusCode)
	}

	if apiclient.IsTransport(err) {
		return fmt.Sprintf("error: cannot reach the API: %v", err)
	}

	return "error: " + err.Error()
}

// setupLogger — формат по env, как у шлюза; пишет в stderr, чтобы не мешать JSON в stdout.
// Без --debug только предупреждения и ошибки.
func setupLogger(env string, w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	switch env {
	case envDev, envProd:
		return slog.New(slog.NewJSONHandler(w, opts))
	case envLocal:
		return slog.New(slog.NewTextHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}
