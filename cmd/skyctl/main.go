package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cuemby/skyconsole/pkg/api"
	"github.com/cuemby/skyconsole/pkg/client"
	"github.com/cuemby/skyconsole/pkg/config"
	"github.com/cuemby/skyconsole/pkg/console"
	"github.com/cuemby/skyconsole/pkg/events"
	"github.com/cuemby/skyconsole/pkg/guard"
	"github.com/cuemby/skyconsole/pkg/listing"
	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/metrics"
	"github.com/cuemby/skyconsole/pkg/security"
	"github.com/cuemby/skyconsole/pkg/session"
	"github.com/cuemby/skyconsole/pkg/storage"
	"github.com/cuemby/skyconsole/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// consoleApp is everything one command invocation works with
type consoleApp struct {
	cfg       *config.Config
	tlsConfig *tls.Config
	store     storage.Store
	broker    *events.Broker
	sub       events.Subscriber
	done      chan struct{}
	session   *session.Manager
	gateway   *client.Client
	console   *console.Console
	guard     *guard.Guard
}

var app *consoleApp

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

// execute runs cmd and releases the app afterwards. Cobra skips the
// post-run hooks when the command fails.
func execute(ctx context.Context, cmd *cobra.Command) error {
	defer closeApp()
	return cmd.ExecuteContext(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "skyctl",
	Short: "skyctl - SkyTask operations console",
	Long: `skyctl is the operations console for the SkyTask distributed task
scheduler. It keeps a session per installation, switches between backend
environments, and manages tasks, executions, executor nodes and alert rules.

Every command is gated by the same navigation rules as the web console:
commands that need a login redirect to "skyctl login", and commands that
need a permission the account lacks are refused with a warning.`,
	Version:            Version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"skyctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultPath(), "Config file")
	flags.String("server", "", "Backend base URL (overrides config)")
	flags.String("data-dir", "", "Directory holding the session database (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.String("from", "", "Route the command is navigated from, used as the redirect on permission denial")
	flags.Bool("dump-metrics", false, "Print collected metrics in Prometheus text format after the command")
	flags.StringP("output", "o", "table", "Output format: table, yaml, json")
}

// setup loads config, opens the session store and wires the session manager,
// gateway and controllers, then runs the navigation guard for the command
func setup(cmd *cobra.Command, args []string) error {
	if !isRouted(cmd) {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})

	metrics.SetVersion(Version)
	tlsConfig, err := security.TLSConfig(cfg.TLS.CAFile, cfg.TLS.InsecureSkipVerify)
	if err != nil {
		return err
	}

	var storeOpts []storage.BoltOption
	if cfg.Session.Encrypt {
		sealer, err := newSealer(cfg)
		if err != nil {
			return err
		}
		storeOpts = append(storeOpts, storage.WithSealer(sealer))
	}
	store, err := storage.NewBoltStore(cfg.DataDir, storeOpts...)
	if err != nil {
		metrics.UpdateComponent(metrics.ComponentStore, false, err.Error())
		return fmt.Errorf("failed to open session store: %w", err)
	}
	metrics.UpdateComponent(metrics.ComponentStore, true, filepath.Join(cfg.DataDir, storage.DatabaseFile))

	broker := events.NewBroker()
	broker.Start()

	a := &consoleApp{
		cfg:       cfg,
		tlsConfig: tlsConfig,
		store:     store,
		broker:    broker,
		sub:       broker.Subscribe(),
		done:      make(chan struct{}),
		guard:     guard.New(),
	}
	go a.logEvents()

	// The gateway reads credentials from the manager and the manager calls
	// the backend through the gateway, so both sides are bound late
	a.gateway = client.NewClient(cfg,
		client.WithCredentials(client.CredentialsFunc(func() types.Credentials {
			return a.session.CurrentCredentials()
		})),
		client.WithRefresher(client.RefresherFunc(func(ctx context.Context) error {
			return a.session.RefreshToken(ctx)
		})),
		client.WithTLSConfig(tlsConfig),
	)
	a.session = session.NewManager(api.NewAuthAPI(a.gateway), store, session.WithPublisher(broker))
	a.console = console.New(a.gateway,
		listing.WithPublisher(broker),
		listing.WithPageSize(cfg.PageSize))
	app = a

	if err := enforceRoute(cmd, args); err != nil {
		a.close()
		return err
	}
	return nil
}

// teardown dumps metrics when asked. The app is released by execute.
func teardown(cmd *cobra.Command, args []string) error {
	if app == nil {
		return nil
	}
	if dump, _ := cmd.Flags().GetBool("dump-metrics"); dump {
		return dumpMetrics(cmd.OutOrStdout())
	}
	return nil
}

// newSealer loads the session key, or derives it from SKYCTL_SESSION_PASSPHRASE
func newSealer(cfg *config.Config) (*security.Sealer, error) {
	if passphrase := os.Getenv("SKYCTL_SESSION_PASSPHRASE"); passphrase != "" {
		return security.NewSealerFromPassphrase(passphrase)
	}

	keyFile := cfg.Session.KeyFile
	if keyFile == "" {
		keyFile = filepath.Join(cfg.DataDir, security.KeyFile)
	}
	key, err := security.LoadOrCreateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session key: %w", err)
	}
	return security.NewSealer(key)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("server") {
		cfg.Server, _ = flags.GetString("server")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON, _ = flags.GetBool("log-json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logEvents writes console events to the debug log until the subscription closes
func (a *consoleApp) logEvents() {
	defer close(a.done)
	logger := log.WithComponent("events")
	for event := range a.sub {
		logger.Debug().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Interface("metadata", event.Metadata).
			Msg(event.Message)
	}
}

// closeApp releases the current app, if any
func closeApp() {
	if app != nil {
		app.close()
	}
}

func (a *consoleApp) close() {
	a.broker.Unsubscribe(a.sub)
	<-a.done
	a.broker.Stop()
	if err := a.store.Close(); err != nil {
		log.Logger.Warn().Err(err).Msg("Failed to close session store")
	}
	app = nil
}
