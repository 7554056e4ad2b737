package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/TechHubXperts/project-AnuAleMagar/cli/api"
	"github.com/TechHubXperts/project-AnuAleMagar/cli/logger"
	"github.com/TechHubXperts/project-AnuAleMagar/cli/storage"
)

// Set at link time with -ldflags "-X main.version=...".
var (
	version  = "dev"
	revision = "unknown"
	created  = "unknown"
)

// Options for the CLI. Pass `--server.port` or set the `SERVICE_SERVER_PORT` env var.
type Options struct {
	Logger  logger.Options
	Server  api.ServerOptions
	Router  api.RouterOptions
	Storage storage.Options
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Logger)

		store, closer, err := storage.Open(context.Background(), &options.Storage)
		if err != nil {
			log.Error("could not open store", "driver", options.Storage.Driver, "err", err)
			os.Exit(1)
		}
		closeStore := closeOnce(closer, log)

		srv := api.NewServer(&options.Server,
			api.NewRouter(&options.Router, "Phonebook API", version, revision, created, store, log),
			log,
		)
		hooks.OnStart(func() {
			log.Info("server listening", "addr", srv.Addr, "store", options.Storage.Driver)
			serve(srv, closeStore, log)
		})
		hooks.OnStop(func() {
			shutdown(srv, options.Server.ShutdownTimeout, closeStore, log)
		})
	})
	cli.Run()
}

// closeOnce returns a function closing c on its first call only.
func closeOnce(c io.Closer, log *slog.Logger) func() {
	return sync.OnceFunc(func() {
		err := c.Close()
		if err != nil {
			log.Warn("could not close the store", "err", err)
		}
	})
}

// serve blocks while srv serves. The stop hook is not run when serving
// fails, so the store is closed here in that case.
func serve(srv *http.Server, closeStore func(), log *slog.Logger) {
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		log.Info("server closed")
		return
	}
	log.Error("failed to listen and serve", "err", err)
	closeStore()
}

func shutdown(srv *http.Server, timeout time.Duration, closeStore func(), log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	if err != nil {
		log.Warn("could not shutdown the server", "err", err)
	}
	closeStore()
}
