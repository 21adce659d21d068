package cmd

import (
	"errors"
	"fmt"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:     "scenario",
	Aliases: []string{"scenarios"},
	Short:   "Build what-if scenarios on top of the forecast",
	RunE:    runScenarioList,
}

var scenarioCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioCreate,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	RunE:  runScenarioList,
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <scenario-id>",
	Short: "Show a scenario's adjustments and its weekly effect",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioShow,
}

var scenarioDelayCmd = &cobra.Command{
	Use:   "delay <scenario-id> <entry-id> <days>",
	Short: "Move an entry later by a number of days",
	Args:  cobra.ExactArgs(3),
	RunE:  runScenarioAdjust(model.AdjustDelay),
}

var scenarioOverrideCmd = &cobra.Command{
	Use:   "override <scenario-id> <entry-id> <amount>",
	Short: "Replace an entry's amount",
	Args:  cobra.ExactArgs(3),
	RunE:  runScenarioAdjust(model.AdjustOverride),
}

var scenarioRemoveCmd = &cobra.Command{
	Use:   "remove <scenario-id> <entry-id>",
	Short: "Drop an entry from the scenario",
	Args:  cobra.ExactArgs(2),
	RunE:  runScenarioAdjust(model.AdjustRemove),
}

var scenarioDeleteCmd = &cobra.Command{
	Use:     "rm <scenario-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a scenario and its adjustments",
	Args:    cobra.ExactArgs(1),
	RunE:    runScenarioDelete,
}

func init() {
	scenarioCmd.AddCommand(
		scenarioCreateCmd,
		scenarioListCmd,
		scenarioShowCmd,
		scenarioDelayCmd,
		scenarioOverrideCmd,
		scenarioRemoveCmd,
		scenarioDeleteCmd,
	)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioCreate(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	sc, err := s.CreateScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("  Created scenario %q\n", sc.Name)
	fmt.Printf("  ID: %s\n", sc.ID)
	return nil
}

func runScenarioList(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	scenarios, err := s.ListScenarios()
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Println("\n  No scenarios yet. Create one with `kasplan scenario create <name>`.")
		return nil
	}

	rows := make([][]string, 0, len(scenarios))
	for _, sc := range scenarios {
		rows = append(rows, []string{
			sc.ID,
			sc.Name,
			cli.FormatNumber(int64(len(sc.Adjustments))),
			sc.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"ID", "Name", "Adjustments", "Created"},
		Rows:    rows,
	}))
	return nil
}

func runScenarioShow(_ *cobra.Command, args []string) error {
	run, err := loadForecast(args[0])
	if err != nil {
		return err
	}
	sc := run.Scenario
	if sc == nil {
		return errors.New("scenario id is required")
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO  %s", sc.Name)))
	fmt.Println()

	if len(sc.Adjustments) == 0 {
		fmt.Println("  No adjustments. Add one with `kasplan scenario delay|override|remove`.")
	} else {
		rows := make([][]string, 0, len(sc.Adjustments))
		for i, adj := range sc.Adjustments {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				adj.EntryID,
				adj.Kind.String(),
				describeAdjustment(adj),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Adjustments (applied in order)",
			Headers: []string{"#", "Entry", "Kind", "Value"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	weeks, err := forecast.CompareWeekly(run.Base, run.Window)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(weeks)+2)
	for _, w := range weeks {
		rows = append(rows, []string{
			fmt.Sprintf("W%d", w.Index+1),
			w.Start.Format(model.DateLayout),
			formatMoney(w.Base),
			formatMoney(w.Scenario),
			cli.FormatSignedMoney(w.Delta, cfg.Forecast.Currency),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Low point", "",
		formatMoney(cli.DisplayLowPoint(forecast.WorstPoint(run.Base))),
		formatMoney(cli.DisplayLowPoint(forecast.WorstPoint(run.Window))),
		"",
	})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Week-end balance vs baseline",
		Headers: []string{"Week", "Start", "Baseline", "Scenario", "Delta"},
		Rows:    rows,
	}))
	return nil
}

func describeAdjustment(adj model.ScenarioAdjustment) string {
	switch adj.Kind {
	case model.AdjustDelay:
		return fmt.Sprintf("%s days", adj.Value.String())
	case model.AdjustOverride:
		return formatMoney(adj.Value)
	}
	return ""
}

// runScenarioAdjust returns the RunE for one adjustment kind. The value
// argument is parsed and validated before anything is written.
func runScenarioAdjust(kind model.AdjustmentKind) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		adj := model.ScenarioAdjustment{EntryID: args[1], Kind: kind, Value: decimal.Zero}
		if len(args) > 2 {
			v, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("%s value %q: %w", kind, args[2], forecast.ErrInvalidArgument)
			}
			adj.Value = v
		}
		if err := forecast.ValidateAdjustment(adj); err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.AddAdjustment(args[0], adj); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no scenario with id %s", args[0])
			}
			return err
		}
		fmt.Printf("  Added %s of entry %s", kind, adj.EntryID)
		if v := describeAdjustment(adj); v != "" {
			fmt.Printf(" (%s)", v)
		}
		fmt.Println()
		return nil
	}
}

func runScenarioDelete(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ok, err := s.DeleteScenario(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no scenario with id " + args[0])
	}
	fmt.Printf("  Deleted scenario %s\n", args[0])
	return nil
}
