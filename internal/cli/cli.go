package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"localization-editor/internal/audit"
	"localization-editor/internal/cache"
	"localization-editor/internal/config"
	"localization-editor/internal/graph"
	"localization-editor/internal/locale"
	"localization-editor/internal/mod"
	"localization-editor/internal/parser"
	"localization-editor/internal/preferences"
	"localization-editor/internal/resolver"
	"localization-editor/internal/store"
	"localization-editor/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrBrokenRows is returned by validate --strict when broken rows were found.
var ErrBrokenRows = errors.New("localisation has broken rows")

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the flags shared by every command.
type app struct {
	cfg       *config.Config
	gamePath  string
	modPath   string
	encoding  string
	prefsPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "localization-editor",
		Short:        "Resolve and validate the localisation tables of a game mod",
		Long:         "Resolves a mod's localisation files against the base game, classifies every row and reports broken or duplicated keys.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			zerolog.SetGlobalLevel(a.cfg.LogLevel)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.gamePath, "game", "", "Base game directory (overrides GAME_PATH and saved preferences)")
	flags.StringVar(&a.modPath, "mod", "", "Mod directory (overrides MOD_PATH and saved preferences)")
	flags.StringVar(&a.encoding, "encoding", "", "Localisation file encoding: utf-8 or windows-1252")
	flags.StringVar(&a.prefsPath, "prefs", "", "Preferences file (default: user config directory)")

	rootCmd.AddCommand(a.resolveCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.lookupCmd())
	rootCmd.AddCommand(a.duplicatesCmd())
	rootCmd.AddCommand(a.prefsCmd())
	rootCmd.AddCommand(a.auditCmd())
	rootCmd.AddCommand(a.graphCmd())

	return rootCmd
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Open a mod, list its localisation files by origin and remember the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openMod()
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), m.Localization)

			// Only a successful open replaces the saved selection.
			prefs, err := a.preferences()
			if err != nil {
				return err
			}
			if err := prefs.Save(m.Location); err != nil {
				log.Warn().Err(err).Msg("Failed to save preferences")
			}
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report broken rows and duplicated keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openMod()
			if err != nil {
				return err
			}
			report := audit.Build(m)
			printReport(cmd.OutOrStdout(), report)
			if strict && report.Broken() > 0 {
				return fmt.Errorf("%d rows: %w", report.Broken(), ErrBrokenRows)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when broken rows are found")
	return cmd
}

func (a *app) lookupCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "lookup <key>",
		Short: "Show every file defining a key, mod files first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := locale.Languages()
			if lang != "" {
				l, err := locale.ParseLanguage(lang)
				if err != nil {
					return err
				}
				langs = []locale.Language{l}
			}

			m, err := a.openMod()
			if err != nil {
				return err
			}
			occ := m.Localization.Occurrences(args[0])
			if len(occ) == 0 {
				return fmt.Errorf("key %q: %w", args[0], parser.ErrUnknownKey)
			}
			printOccurrences(cmd.OutOrStdout(), args[0], occ, langs)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Only show this language (name or tag, e.g. german or de)")
	return cmd
}

func (a *app) duplicatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List keys defined twice in a file or in more than one file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openMod()
			if err != nil {
				return err
			}
			printDuplicates(cmd.OutOrStdout(), m.Localization)
			return nil
		},
	}
}

func (a *app) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the saved game and mod directories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.preferences()
			if err != nil {
				return err
			}
			loc, ok, err := prefs.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "No saved directories (%s)\n", prefs.Path())
				return nil
			}
			fmt.Fprintf(out, "game: %s\nmod:  %s\n", loc.GameRoot, loc.ModRoot)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Save --game and --mod without opening the mod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := mod.Location{GameRoot: a.gamePath, ModRoot: a.modPath}
			if err := loc.Validate(); err != nil {
				return err
			}
			prefs, err := a.preferences()
			if err != nil {
				return err
			}
			if err := prefs.Save(loc); err != nil {
				return err
			}
			log.Info().Str("path", prefs.Path()).Msg("Preferences saved")
			return nil
		},
	})

	return cmd
}

func (a *app) auditCmd() *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "audit [mod-dir...]",
		Short: "Audit one or more mods against the base game",
		Long: `Resolves and validates every given mod against the same base game in parallel.
Without arguments the selected mod is audited. With --store each report is kept in
PostgreSQL (DATABASE_URL); mods whose content did not change since the last run are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAudit(cmd, args, persist)
		},
	}
	cmd.Flags().BoolVar(&persist, "store", false, "Store reports in PostgreSQL")
	return cmd
}

func (a *app) graphCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Publish the key occurrence graph to Neo4j and list shared keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			m, err := a.openMod()
			if err != nil {
				return err
			}

			driver, err := initNeo4j(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer driver.Close(ctx)

			builder := graph.NewGraphBuilder(driver)
			if err := builder.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure graph schema: %w", err)
			}
			if err := builder.Publish(ctx, m.Location.ModRoot, m.Localization); err != nil {
				return err
			}

			querier := graph.NewGraphQuerier(driver)
			if key != "" {
				states, err := querier.KeyStates(ctx, m.Location.ModRoot, key)
				if err != nil {
					return err
				}
				if len(states) == 0 {
					return fmt.Errorf("key %q: %w", key, parser.ErrUnknownKey)
				}
				printKeyStates(cmd.OutOrStdout(), key, states)
				return nil
			}

			shared, err := querier.SharedKeys(ctx, m.Location.ModRoot)
			if err != nil {
				return err
			}
			printSharedKeys(cmd.OutOrStdout(), shared)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Show the state of this key in every file instead of listing shared keys")
	return cmd
}

// runAudit handles the `audit` command.
func (a *app) runAudit(cmd *cobra.Command, args []string, persist bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	// Explicit mod arguments make a missing mod selection irrelevant.
	base, _ := a.location()
	if base.GameRoot == "" {
		return fmt.Errorf("%w: game path is not set", mod.ErrOpenMod)
	}
	modRoots := args
	if len(modRoots) == 0 {
		if base.ModRoot == "" {
			return fmt.Errorf("%w: mod path is not set", mod.ErrOpenMod)
		}
		modRoots = []string{base.ModRoot}
	}

	enc, err := a.fileEncoding()
	if err != nil {
		return err
	}

	locations := make([]mod.Location, len(modRoots))
	for i, root := range modRoots {
		locations[i] = mod.Location{GameRoot: base.GameRoot, ModRoot: root}
	}

	// Every mod shares the base game, so its files are parsed once.
	parseCache := cache.NewParseCache()
	pool := worker.NewPool[mod.Location, *audit.Report](a.cfg.WorkerCount,
		func(ctx context.Context, loc mod.Location) (*audit.Report, error) {
			m, err := mod.Load(loc, resolver.WithEncoding(enc), resolver.WithCache(parseCache))
			if err != nil {
				return nil, err
			}
			return audit.Build(m), nil
		},
	)
	tasks := pool.Execute(ctx, locations)
	hits, misses := parseCache.Stats()
	log.Debug().Int64("hits", hits).Int64("misses", misses).Msg("Parse cache")

	var auditStore *store.AuditStore
	if persist {
		pgPool, err := initPostgres(ctx, a.cfg)
		if err != nil {
			return err
		}
		defer pgPool.Close()

		auditStore = store.NewAuditStore(pgPool)
		if err := auditStore.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, task := range tasks {
		if task.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", task.Input.ModRoot, task.Err)
			continue
		}
		printAuditSummary(out, task.Result)

		if auditStore == nil {
			continue
		}
		unchanged, err := auditStore.Unchanged(ctx, task.Result)
		if err != nil {
			return err
		}
		if unchanged {
			log.Info().Str("mod", task.Input.ModRoot).Msg("Localisation unchanged since last audit, not stored")
			continue
		}
		if _, err := auditStore.Save(ctx, task.Result); err != nil {
			return err
		}
	}

	log.Info().Int("mods", len(tasks)).Int("failed", failed).Msg("Audit complete")
	if failed > 0 {
		return fmt.Errorf("%d of %d mods: %w", failed, len(tasks), mod.ErrOpenMod)
	}
	return nil
}

// location merges saved preferences, then the environment, then flags; later sources win.
func (a *app) location() (mod.Location, error) {
	var loc mod.Location

	prefs, err := a.preferences()
	if err == nil {
		saved, ok, err := prefs.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable preferences")
		} else if ok {
			loc = saved
		}
	}

	if a.cfg.GamePath != "" {
		loc.GameRoot = a.cfg.GamePath
	}
	if a.cfg.ModPath != "" {
		loc.ModRoot = a.cfg.ModPath
	}
	if a.gamePath != "" {
		loc.GameRoot = a.gamePath
	}
	if a.modPath != "" {
		loc.ModRoot = a.modPath
	}
	return loc, loc.Validate()
}

func (a *app) preferences() (*preferences.Store, error) {
	switch {
	case a.prefsPath != "":
		return preferences.NewStore(a.prefsPath), nil
	case a.cfg.Preferences != "":
		return preferences.NewStore(a.cfg.Preferences), nil
	}
	return preferences.DefaultStore()
}

func (a *app) fileEncoding() (parser.Encoding, error) {
	if a.encoding != "" {
		return parser.ParseEncoding(a.encoding)
	}
	return parser.ParseEncoding(a.cfg.Encoding)
}

// openMod loads the selected mod. mod.Load reports an incomplete selection as ErrOpenMod.
func (a *app) openMod() (*mod.Mod, error) {
	loc, _ := a.location()
	enc, err := a.fileEncoding()
	if err != nil {
		return nil, err
	}
	return mod.Load(loc, resolver.WithEncoding(enc))
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// initPostgres connects the audit database.
func initPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pgPool, nil
}

// initNeo4j connects the occurrence graph database.
func initNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
