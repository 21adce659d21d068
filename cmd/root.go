package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/config"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/store"
	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDays     int
	flagDBPath   string
	flagToday    string
	flagQuiet    bool
	flagLogLevel string
)

// cfg and logger are populated before any subcommand runs.
var (
	cfg    = config.DefaultConfig()
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:               "kasplan",
	Short:             "Cashflow forecast and scenario CLI",
	Long:              "Project your daily cash balance from expected income and expenses, and try what-if scenarios.",
	PersistentPreRunE: initRuntime,
	RunE:              runForecast,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Forecast horizon in days (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "First forecast day, YYYY-MM-DD (default: today)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func initRuntime(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	theme.SetActive(cfg.Appearance.Theme)

	level := flagLogLevel
	if level == "" {
		level = config.GetLogLevel(cfg)
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return config.DBPath(cfg)
}

func openStore() (*store.Store, error) {
	s, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

func horizonDays() int {
	if flagDays > 0 {
		return flagDays
	}
	return cfg.Forecast.HorizonDays
}

// resolveToday returns the first forecast day: --today if given,
// otherwise the current local calendar date.
func resolveToday() (time.Time, error) {
	if flagToday == "" {
		return model.Date(time.Now()), nil
	}
	d, err := forecast.ParseDate(flagToday)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

// forecastRun is the shared result of loading entries and projecting them.
type forecastRun struct {
	Today    time.Time
	Entries  int
	Scenario *model.Scenario
	Base     model.ForecastWindow
	Window   model.ForecastWindow // equals Base when no scenario is selected
}

// loadForecast is the shared data loading path used by the report commands.
func loadForecast(scenarioID string) (*forecastRun, error) {
	today, err := resolveToday()
	if err != nil {
		return nil, err
	}

	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	entries, err := s.ListEntries(true)
	if err != nil {
		return nil, err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loaded %s expected entries\n", cli.FormatNumber(int64(len(entries))))
	}

	run := &forecastRun{Today: today, Entries: len(entries)}
	run.Base, err = forecast.Generate(entries, nil, today, horizonDays())
	if err != nil {
		return nil, err
	}
	run.Window = run.Base

	if scenarioID != "" {
		sc, err := s.GetScenario(scenarioID)
		if err != nil {
			return nil, err
		}
		run.Scenario = &sc
		run.Window, err = forecast.Generate(entries, sc.Adjustments, today, horizonDays())
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"today":    model.DayKey(today),
		"days":     len(run.Window),
		"entries":  run.Entries,
		"scenario": scenarioID,
	}).Debug("forecast generated")
	return run, nil
}

func formatMoney(d decimal.Decimal) string {
	return cli.FormatMoney(d, cfg.Forecast.Currency)
}
