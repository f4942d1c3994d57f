package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/san-kum/corrlab/internal/api"
	"github.com/san-kum/corrlab/internal/cache"
	"github.com/san-kum/corrlab/internal/chart"
	"github.com/san-kum/corrlab/internal/client"
	"github.com/san-kum/corrlab/internal/config"
	"github.com/san-kum/corrlab/internal/dashboard"
	"github.com/san-kum/corrlab/internal/export"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
	"github.com/san-kum/corrlab/internal/service"
	"github.com/san-kum/corrlab/internal/storage"
	"github.com/san-kum/corrlab/internal/viz"
)

var (
	configFile string
	dataDir    string
	apiURL     string
	addr       string
	preset     string
	rangeFlag  string
	themeFlag  string
	logFile    string
	days       int
	seed       uint64
	scatter    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "corrlab",
		Short:        "asset correlation lab",
		SilenceUsage: true,
		RunE:         runDash,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "price data directory")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", config.DefaultAPIURL, "backend base URL")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "asset universe preset")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", fmt.Sprintf("color theme %v", viz.ThemeNames()))
	rootCmd.Flags().StringVar(&rangeFlag, "range", "", "initial range")
	rootCmd.Flags().StringVar(&logFile, "log", "", "log file (default: corrlab-dash.log in the temp dir)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the correlation API and web dashboard",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	dashCmd := &cobra.Command{
		Use:   "dash",
		Short: "interactive terminal dashboard",
		RunE:  runDash,
	}
	dashCmd.Flags().StringVar(&rangeFlag, "range", "", "initial range")
	dashCmd.Flags().StringVar(&logFile, "log", "", "log file (default: corrlab-dash.log in the temp dir)")

	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "list the asset universe",
		RunE:  listAssets,
	}

	rangesCmd := &cobra.Command{
		Use:   "ranges",
		Short: "list lookback ranges",
		Run: func(cmd *cobra.Command, args []string) {
			for i, r := range market.Ranges {
				fmt.Printf("  %d  %s\n", i+1, r)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list asset universe presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.PresetNames() {
				ids := make([]string, 0, len(config.Presets[name]))
				for _, a := range config.Presets[name] {
					ids = append(ids, a.ID)
				}
				fmt.Printf("  %-10s %v\n", name, ids)
			}
		},
	}

	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "print the correlation matrix",
		RunE:  printMatrix,
	}
	matrixCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")

	compareCmd := &cobra.Command{
		Use:   "compare [asset_a] [asset_b]",
		Short: "plot two assets' cumulative performance",
		Args:  cobra.ExactArgs(2),
		RunE:  printComparison,
	}
	compareCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")
	compareCmd.Flags().Int("width", 80, "plot width")
	compareCmd.Flags().Int("height", 15, "plot height")
	compareCmd.Flags().BoolVar(&scatter, "scatter", false, "plot daily returns against each other")

	insightsCmd := &cobra.Command{
		Use:   "insights",
		Short: "print correlation insights",
		RunE:  printInsights,
	}
	insightsCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [asset_a asset_b]",
		Short: "export the matrix, or a pair comparison, as SVG",
		Args:  noneOrPair,
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")
	exportSVGCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	exportSVGCmd.Flags().Int("cell", export.DefaultCellSize, "matrix cell size")
	exportSVGCmd.Flags().Int("width", 800, "comparison width")
	exportSVGCmd.Flags().Int("height", 300, "comparison height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [asset_a asset_b]",
		Short: "export the matrix, or a pair comparison, as JSON",
		Args:  noneOrPair,
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")
	exportJSONCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [asset_a asset_b]",
		Short: "export the matrix, or a pair comparison, as CSV",
		Args:  noneOrPair,
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")
	exportCSVCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [asset_a] [asset_b]",
		Short: "export a pair comparison chart as PNG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&rangeFlag, "range", "", "lookback range")
	exportPNGCmd.Flags().StringP("out", "o", "comparison.png", "output file")
	exportPNGCmd.Flags().Int("width", chart.DefaultPNGWidth, "image width")
	exportPNGCmd.Flags().Int("height", chart.DefaultPNGHeight, "image height")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "write synthetic price CSVs for the asset universe",
		RunE:  seedData,
	}
	seedCmd.Flags().IntVar(&days, "days", 2520, "trading days per asset")
	seedCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	importCmd := &cobra.Command{
		Use:   "import [asset...]",
		Short: "copy price CSVs into Postgres",
		RunE:  importPrices,
	}

	rootCmd.AddCommand(serveCmd, dashCmd, assetsCmd, rangesCmd, presetsCmd, matrixCmd, compareCmd,
		insightsCmd, exportSVGCmd, exportJSONCmd, exportCSVCmd, exportPNGCmd, seedCmd, importCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers .env, the config file, CORRLAB_* variables and finally
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("api") {
		cfg.Client.APIURL = apiURL
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if flags.Changed("theme") {
		cfg.Dashboard.Theme = themeFlag
	}
	if flags.Changed("range") {
		cfg.Dashboard.Range = rangeFlag
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func selectedRange(cfg *config.Config) (market.Range, error) {
	return market.ParseRange(cfg.Dashboard.Range)
}

// priceSource prefers Postgres when the dependencies carry a pool.
func priceSource(ctx context.Context, cfg *config.Config, deps *config.Dependencies) (storage.PriceSource, string, error) {
	if deps != nil && deps.Postgres != nil {
		pg := storage.NewPostgres(deps.Postgres)
		if err := pg.Migrate(ctx); err != nil {
			return nil, "", fmt.Errorf("migrate postgres: %w", err)
		}
		return pg, "postgres", nil
	}
	return storage.NewCSV(cfg.DataDir), "csv", nil
}

// localService computes payloads in-process, without the HTTP backend.
func localService(ctx context.Context, cfg *config.Config) (*service.Service, func(), error) {
	var opts []config.Option
	if cfg.Postgres.DSN != "" {
		opts = append(opts, config.WithPostgres(cfg.Postgres.DSN))
	}
	deps, err := config.NewDependencies(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	source, _, err := priceSource(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, nil, err
	}
	return service.New(source, cfg.Assets), deps.Close, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []config.Option{config.WithLogger(cfg.Server.LogLevel, os.Stdout)}
	if cfg.Postgres.DSN != "" {
		opts = append(opts, config.WithPostgres(cfg.Postgres.DSN))
	}
	deps, err := config.NewDependencies(ctx, opts...)
	if err != nil {
		return err
	}
	defer deps.Close()
	logger := deps.Logger

	if config.ParseLevel(cfg.Server.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Redis.Addr != "" {
		if err := config.WithRedis(cfg.Redis.Addr, cfg.Redis.DB)(ctx, deps); err != nil {
			logger.Warn("redis unavailable, serving without matrix cache", "error", err)
		}
	}

	source, kind, err := priceSource(ctx, cfg, deps)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{service.WithLogger(logger)}
	serverOpts := []api.Option{api.WithLogger(logger)}
	if deps.Redis != nil {
		rc := cache.NewRedisCache(deps.Redis, cfg.Redis.TTL, logger)
		svcOpts = append(svcOpts, service.WithCache(rc))
		serverOpts = append(serverOpts, api.WithCacheHealth(rc))
	}
	svc := service.New(source, cfg.Assets, svcOpts...)

	logger.Info("starting corrlab", "source", kind, "data_dir", cfg.DataDir,
		"assets", len(cfg.Assets), "cache", deps.Redis != nil)
	return api.NewServer(svc, serverOpts...).Run(ctx, cfg.Server.Addr)
}

func runDash(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := selectedRange(cfg)
	if err != nil {
		return err
	}

	path := logFile
	if path == "" {
		path = filepath.Join(os.TempDir(), "corrlab-dash.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	deps, err := config.NewDependencies(cmd.Context(), config.WithLogger(cfg.Server.LogLevel, f))
	if err != nil {
		return err
	}
	defer deps.Close()

	c := client.New(cfg.Client.APIURL, client.WithTimeout(cfg.Client.Timeout))
	model := dashboard.New(dashboard.Options{
		Fetcher:    c,
		Range:      r,
		AssetA:     cfg.Dashboard.AssetA,
		AssetB:     cfg.Dashboard.AssetB,
		Theme:      viz.GetTheme(cfg.Dashboard.Theme),
		SaveTheme:  saveTheme,
		Logger:     deps.Logger,
		ServerHint: "corrlab serve --addr " + cfg.Server.Addr,
	})

	deps.Logger.Info("starting dashboard", "api", c.BaseURL(), "range", r)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// saveTheme persists only the theme, leaving env and flag overrides out of
// the file.
func saveTheme(name string) error {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}
	cfg.Dashboard.Theme = name
	return config.Save(configFile, cfg)
}

func listAssets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, a := range cfg.Assets {
		fmt.Fprintf(w, "%s\t%s\n", a.ID, a.Name)
	}
	return w.Flush()
}

func printMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := selectedRange(cfg)
	if err != nil {
		return err
	}
	svc, done, err := localService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer done()

	m, err := svc.Matrix(cmd.Context(), r)
	if err != nil {
		return err
	}
	theme := viz.GetTheme(cfg.Dashboard.Theme)
	grid := matrix.NewRenderer().Render(m)

	fmt.Println(grid.Terminal(theme.MatrixStyle(), matrix.NoCursor))
	fmt.Printf("\nrange %s · reference date %s\n", m.Range, m.ReferenceDate)
	return nil
}

func printComparison(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := selectedRange(cfg)
	if err != nil {
		return err
	}
	svc, done, err := localService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer done()

	cmp, err := svc.Comparison(cmd.Context(), args[0], args[1], r)
	if service.IsNotFound(err) {
		return fmt.Errorf("%w (run `corrlab assets` for the universe)", err)
	}
	if err != nil {
		return err
	}
	theme := viz.GetTheme(cfg.Dashboard.Theme)
	plot := chart.Terminal
	if scatter {
		plot = chart.Scatter
	}
	graph, err := plot(cmp, chart.TermOptions{Width: intFlag(cmd, "width"), Height: intFlag(cmd, "height"), Theme: theme})
	if err != nil {
		return fmt.Errorf("%s vs %s over %s: %w", args[0], args[1], r, err)
	}
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tVOLATILITY\tRETURN")
	for _, s := range []struct {
		series market.AssetSeries
		vol    float64
	}{{cmp.AssetA, cmp.VolatilityA}, {cmp.AssetB, cmp.VolatilityB}} {
		ret, _ := s.series.FinalReturn()
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.series.ID, viz.Percent(s.vol), viz.SignedPercent(ret))
	}
	fmt.Fprintf(w, "correlation\t%.4f\t(n=%d)\n", cmp.Correlation, cmp.SampleCount)
	return w.Flush()
}

func printInsights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := selectedRange(cfg)
	if err != nil {
		return err
	}
	svc, done, err := localService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer done()

	ins, err := svc.Insights(cmd.Context(), r)
	if err != nil {
		return err
	}
	if len(ins.Insights) == 0 {
		fmt.Println("no pairs to compare")
		return nil
	}
	for _, in := range ins.Insights {
		fmt.Printf("%s %s\n   %s\n", viz.InsightIcon(in.Type), in.Title, in.Text)
	}
	return nil
}

// exportPayload computes the matrix, or the pair comparison when two asset
// ids are given.
func exportPayload(cmd *cobra.Command, args []string) (*config.Config, *market.CorrelationMatrix, *market.Comparison, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	r, err := selectedRange(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, done, err := localService(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	defer done()

	if len(args) == 2 {
		cmp, err := svc.Comparison(cmd.Context(), args[0], args[1], r)
		return cfg, nil, cmp, err
	}
	m, err := svc.Matrix(cmd.Context(), r)
	return cfg, m, nil, err
}

func noneOrPair(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("expected no arguments or two asset ids, got %d", len(args))
	}
	return nil
}

func intFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

// writeOutput writes to the --out file, or stdout when it is empty.
func writeOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	outFile, _ := cmd.Flags().GetString("out")
	if outFile == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(outFile)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, m, cmp, err := exportPayload(cmd, args)
	if err != nil {
		return err
	}

	theme := viz.GetTheme(cfg.Dashboard.Theme)
	var svg string
	if cmp != nil {
		svg = export.ComparisonToSVG(cmp, intFlag(cmd, "width"), intFlag(cmd, "height"), theme)
		if svg == "" {
			return fmt.Errorf("%s vs %s over %s: %w", args[0], args[1], cmp.Range, chart.ErrTooFewPoints)
		}
	} else {
		svg = export.MatrixToSVG(matrix.NewRenderer().Render(m), theme, intFlag(cmd, "cell"))
	}
	return writeOutput(cmd, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, svg)
		return err
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, m, cmp, err := exportPayload(cmd, args)
	if err != nil {
		return err
	}
	return writeOutput(cmd, func(w io.Writer) error {
		if cmp != nil {
			return export.WriteJSON(w, cmp)
		}
		return export.WriteJSON(w, m)
	})
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, m, cmp, err := exportPayload(cmd, args)
	if err != nil {
		return err
	}
	return writeOutput(cmd, func(w io.Writer) error {
		if cmp != nil {
			return export.WriteComparisonCSV(w, cmp)
		}
		return export.WriteMatrixCSV(w, m)
	})
}

func exportPNG(cmd *cobra.Command, args []string) error {
	cfg, _, cmp, err := exportPayload(cmd, args)
	if err != nil {
		return err
	}
	opts := chart.PNGOptions{Width: intFlag(cmd, "width"), Height: intFlag(cmd, "height"), Theme: viz.GetTheme(cfg.Dashboard.Theme)}
	return writeOutput(cmd, func(w io.Writer) error {
		return chart.PNG(w, cmp, opts)
	})
}

func seedData(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ids := make([]string, len(cfg.Assets))
	for i, a := range cfg.Assets {
		ids[i] = a.ID
	}
	prices := storage.Synthesize(ids, days, time.Now().UTC(), seed)

	store := storage.NewCSV(cfg.DataDir)
	for _, id := range ids {
		if err := store.Save(id, prices[id]); err != nil {
			return err
		}
		fmt.Printf("  %-8s %d rows\n", id, len(prices[id]))
	}
	fmt.Printf("wrote %d assets to %s\n", len(ids), cfg.DataDir)
	return nil
}

func importPrices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn not configured (set postgres.dsn or CORRLAB_PG_DSN)")
	}

	ctx := cmd.Context()
	deps, err := config.NewDependencies(ctx, config.WithPostgres(cfg.Postgres.DSN))
	if err != nil {
		return err
	}
	defer deps.Close()

	pg := storage.NewPostgres(deps.Postgres)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	csv := storage.NewCSV(cfg.DataDir)
	ids := args
	if len(ids) == 0 {
		if ids, err = csv.List(); err != nil {
			return err
		}
	}
	for _, id := range ids {
		prices, err := csv.Prices(ctx, id)
		if err != nil {
			return err
		}
		n, err := pg.Import(ctx, id, prices)
		if err != nil {
			return err
		}
		fmt.Printf("  %-8s %d rows\n", id, n)
	}
	return nil
}
