package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"AllocAdvisor/internal/charts"
	"AllocAdvisor/internal/config"
	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/notifier"
	"AllocAdvisor/internal/pipeline"
	"AllocAdvisor/internal/planner"
	"AllocAdvisor/internal/profile"
	"AllocAdvisor/internal/provider"
	"AllocAdvisor/internal/quant"
	"AllocAdvisor/internal/recorder"
	"AllocAdvisor/internal/router"
	"AllocAdvisor/internal/scheduler"
	"AllocAdvisor/internal/screener"
	"AllocAdvisor/pkg/logger"
)

var (
	configPath  string
	profileText string
	age         int
	income      float64
	capital     float64
	riskLevel   int
	experience  int
	volatility  string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Valuation-percentile allocation advisor",
	Long: `advisor screens an index universe by valuation percentile, sizes the
overall market exposure with a nonlinear curve, and splits the deployable
capital across the cheapest survivors.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one advisory pass and deliver the report",
	RunE:  runOnce,
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen the universe and print results without planning",
	RunE:  runScreen,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the advisory on the configured cron schedule",
	RunE:  runSchedule,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file")

	for _, cmd := range []*cobra.Command{runCmd, scheduleCmd} {
		cmd.Flags().StringVar(&profileText, "profile-text", "", "Free-form investor description to parse")
		cmd.Flags().IntVar(&age, "age", 0, "Investor age")
		cmd.Flags().Float64Var(&income, "annual-income", 0, "Annual income")
		cmd.Flags().Float64Var(&capital, "total-capital", 0, "Total investable capital")
		cmd.Flags().IntVar(&riskLevel, "risk", 0, "Risk tolerance 1-5")
		cmd.Flags().IntVar(&experience, "experience", 0, "Years of investing experience")
		cmd.Flags().StringVar(&volatility, "volatility", "", "Market volatility: low, medium or high")
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report instead of sending it")

	rootCmd.AddCommand(runCmd, screenCmd, scheduleCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg, log, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := p.Run(context.Background(), buildProfile(), router.MarketState{Volatility: router.Volatility(volatility)})
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Println(out.Report)
	}
	return nil
}

func runScreen(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	instruments, err := source.Universe(ctx)
	if err != nil {
		return err
	}
	var universe []model.ValuationSeries
	for _, inst := range instruments {
		series, err := source.FetchSeries(ctx, inst.Code)
		if err != nil {
			log.Warn().Err(err).Str("code", inst.Code).Msg("series fetch failed, skipping")
			continue
		}
		if series.Name == "" {
			series.Name = inst.Name
		}
		universe = append(universe, series)
	}

	results, skipped := screener.New(screenerConfig(cfg), log).Screen(universe)

	fmt.Printf("%-10s %-20s %8s %8s %8s %10s\n", "code", "name", "pe pct", "safety", "act", "composite")
	for _, r := range results {
		fmt.Printf("%-10s %-20s %8.1f %8.2f %8.2f %10.1f\n",
			r.Code, r.Name, r.ValuationPercentile, r.SafetyScore, r.Activity, r.CompositeScore)
	}
	fmt.Printf("\n%d passed, %d skipped\n", len(results), skipped)
	return nil
}

func runSchedule(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg, log, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := scheduler.New(ctx, p, buildProfile(), router.MarketState{Volatility: router.Volatility(volatility)}, log)
	if err := s.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	s.Start()
	defer s.Stop()

	if os.Getenv("RUN_ON_START") == "1" {
		s.RunNow()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	return nil
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	return cfg, log, nil
}

// buildProfile merges the parsed free-form text with explicit flags; flags
// win where both are set.
func buildProfile() model.UserProfile {
	p := profile.Parse(profileText)
	if age > 0 {
		p.Age = age
		p.CareerStage = ""
	}
	if income > 0 {
		p.AnnualIncome = income
	}
	if capital > 0 {
		p.TotalCapital = capital
	}
	if riskLevel >= 1 && riskLevel <= 5 {
		p.RiskLevel = model.RiskLevel(riskLevel)
	}
	if experience > 0 {
		p.Experience = experience
	}
	return profile.ApplyDefaults(p)
}

func buildSource(cfg *config.Config) (provider.Source, error) {
	switch cfg.DataSource.Kind {
	case "http":
		return provider.NewHTTPSource(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, "sector", cfg.DataSource.Lookback), nil
	case "csv":
		return provider.NewCSVSource(cfg.DataSource.CSVDir, cfg.DataSource.Lookback), nil
	case "mock":
		return &provider.MockSource{}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Kind)
	}
}

func screenerConfig(cfg *config.Config) screener.Config {
	sc := screener.DefaultConfig()
	sc.DecayLambda = cfg.Strategy.DecayLambda
	sc.WinsorizePct = cfg.Strategy.WinsorizePct
	sc.MinValuationPercentile = cfg.Screener.MinValuationPercentile
	sc.MaxDecliningMonths = cfg.Screener.MaxDecliningMonths
	sc.MaxPricePercentile = cfg.Screener.MaxPricePercentile
	sc.UniverseCap = cfg.Screener.UniverseCap
	sc.UniverseFloor = cfg.Screener.UniverseFloor
	return sc
}

func buildPipeline(cfg *config.Config, log zerolog.Logger, quiet bool) (*pipeline.Pipeline, func(), error) {
	p := pipeline.New(log)
	p.Router = router.New(log)
	p.Screener = screener.New(screenerConfig(cfg), log)
	p.Planner = planner.New(planner.Config{
		Curve: quant.CurveConfig{
			Type:           quant.CurveType(cfg.Strategy.Curve),
			Aggressiveness: cfg.Strategy.Aggressiveness,
		},
		TopN: cfg.Strategy.TopN,
	}, log)

	// The csv and mock sources serve both universes; the http source gets
	// a separate endpoint family per universe.
	sectorSrc, err := buildSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	p.Sources = map[router.UniverseKind]provider.Source{
		router.UniverseSector: sectorSrc,
	}
	if cfg.DataSource.Kind == "http" {
		p.Sources[router.UniverseSubSector] = provider.NewHTTPSource(
			cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, "subsector", cfg.DataSource.Lookback)
	}

	if cfg.Charts.Enabled {
		p.Renderer = charts.NewRenderer(cfg.Charts.Dir)
		if cfg.ImageHost.BaseURL != "" {
			p.Uploader = notifier.NewImageHost(cfg.ImageHost.BaseURL, cfg.ImageHost.Owner, cfg.ImageHost.Repo, cfg.ImageHost.AccessToken)
		}
	}

	if !quiet && cfg.Webhook.URL != "" {
		p.Sender = notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Proxy, log)
	}

	cleanup := func() {}
	if cfg.Database.SQLitePath != "" {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		p.Recorder = rec
		cleanup = func() { rec.Close() }
	}

	return p, cleanup, nil
}
