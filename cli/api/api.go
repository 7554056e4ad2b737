package api

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/TechHubXperts/project-AnuAleMagar/datastores"
	"github.com/TechHubXperts/project-AnuAleMagar/handlers"
	"github.com/TechHubXperts/project-AnuAleMagar/router"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                      default:""`
	Port              string        `short:"p" doc:"port to listen on"                      default:"8888"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers"   default:"15s"`
	ShutdownTimeout   time.Duration `          doc:"time allowed to drain requests on stop" default:"1m"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix" default:"/api"`
}

func NewRouter(
	options *RouterOptions,
	title string,
	version string,
	revision string,
	created string,
	store datastores.EntriesStore,
	logger *slog.Logger,
) http.Handler {
	buildinfoMetric := fmt.Sprintf("build_info{goversion=%q,title=%q,version=%q,revision=%q,created=%q} 1\n",
		runtime.Version(), title, version, revision, created)
	metriks := metrics.NewSet()
	metriks.NewGauge("phonebook_entries", countEntries(store, logger))
	return router.New(title, version,
		readiness(store, logger),
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		router.OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			meterRequests(metriks),
			ctxlog{}.recoverMiddleware(logger),
		),
		router.OptGroup(options.EndpointsPrefix,
			router.OptAutoRegister(&handlers.Phonebook{
				Store:        store,
				ErrorHandler: ctxlog{}.errorHandler(logger),
			}),
		),
	)
}

// readiness answers 503 while the store cannot be reached.
func readiness(store datastores.EntriesStore, logger *slog.Logger) http.HandlerFunc {
	pinger, ok := store.(interface{ Ping(context.Context) error })
	if !ok {
		return func(http.ResponseWriter, *http.Request) {}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		err := pinger.Ping(r.Context())
		if err != nil {
			logger.LogAttrs(r.Context(), slog.LevelWarn, "store is not ready", slog.Any("err", err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	}
}

// countEntries reports the number of stored entries, or NaN when the store fails.
func countEntries(store datastores.EntriesStore, logger *slog.Logger) func() float64 {
	return func() float64 {
		n, err := store.Count(context.Background())
		if err != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "could not count entries", slog.Any("err", err))
			return math.NaN()
		}
		return float64(n)
	}
}
