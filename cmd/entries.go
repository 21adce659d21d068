package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/pipeline"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagEntriesAll bool

	flagAddID          string
	flagAddType        string
	flagAddAmount      string
	flagAddDate        string
	flagAddSource      string
	flagAddStatus      string
	flagAddDescription string
)

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"entry"},
	Short:   "Manage expected income and expenses",
	RunE:    runEntriesList,
}

var entriesImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import entries from CSV or JSONL files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEntriesImport,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored entries",
	RunE:  runEntriesList,
}

var entriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a single entry",
	RunE:  runEntriesAdd,
}

var entriesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesRm,
}

func init() {
	entriesCmd.PersistentFlags().BoolVar(&flagEntriesAll, "all", false, "Include received and paid entries")

	entriesAddCmd.Flags().StringVar(&flagAddID, "id", "", "Entry ID (default: generated)")
	entriesAddCmd.Flags().StringVarP(&flagAddType, "type", "t", "", "income or expense")
	entriesAddCmd.Flags().StringVarP(&flagAddAmount, "amount", "a", "", "Positive amount, e.g. 1250.00")
	entriesAddCmd.Flags().StringVar(&flagAddDate, "date", "", "Expected date, YYYY-MM-DD")
	entriesAddCmd.Flags().StringVar(&flagAddSource, "source", "manual", "manual, moneybird or eboekhouden")
	entriesAddCmd.Flags().StringVar(&flagAddStatus, "status", "expected", "expected, received or paid")
	entriesAddCmd.Flags().StringVarP(&flagAddDescription, "description", "m", "", "Free-text description")
	_ = entriesAddCmd.MarkFlagRequired("type")
	_ = entriesAddCmd.MarkFlagRequired("amount")
	_ = entriesAddCmd.MarkFlagRequired("date")

	entriesCmd.AddCommand(entriesImportCmd, entriesListCmd, entriesAddCmd, entriesRmCmd)
	rootCmd.AddCommand(entriesCmd)
}

// runEntriesImport reads every file first and saves only if all of them
// parse, so a bad row never leaves a half-imported set behind.
func runEntriesImport(_ *cobra.Command, args []string) error {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning import files...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Reading [%d/%d]", current, total)
	}

	result, err := pipeline.Load(args, progressFn)
	if !flagQuiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}
	for _, f := range result.Files {
		logger.WithField("path", f.Path).WithField("entries", len(f.Entries)).Debug("import file read")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.SaveEntries(result.Entries); err != nil {
		return err
	}
	total, err := s.EntryCount()
	if err != nil {
		return err
	}

	fmt.Printf("  Imported %s entries from %d file(s)\n",
		cli.FormatNumber(int64(len(result.Entries))), result.TotalFiles)
	if result.AssignedIDs > 0 {
		fmt.Printf("  %d row(s) had no id and were given a new one\n", result.AssignedIDs)
	}
	if result.Duplicates > 0 {
		fmt.Printf("  %d duplicate id(s); the last occurrence was kept\n", result.Duplicates)
	}
	fmt.Printf("  %s entries stored in %s\n", cli.FormatNumber(int64(total)), dbPath())
	return nil
}

func runEntriesList(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	entries, err := s.ListEntries(!flagEntriesAll)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No entries found.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		amount := e.Amount
		if e.Kind == model.Expense {
			amount = amount.Neg()
		}
		rows = append(rows, []string{
			e.ID,
			e.ExpectedDate.Format(model.DateLayout),
			formatMoney(amount),
			e.Status.String(),
			e.Source.String(),
			truncate(e.Description, 40),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Entries (%d)", len(entries)),
		Headers: []string{"ID", "Date", "Amount", "Status", "Source", "Description"},
		Rows:    rows,
	}))
	return nil
}

func runEntriesAdd(_ *cobra.Command, _ []string) error {
	raw := model.RawEntry{
		ID:           flagAddID,
		Kind:         flagAddType,
		Source:       flagAddSource,
		Amount:       flagAddAmount,
		ExpectedDate: flagAddDate,
		Status:       flagAddStatus,
		Description:  flagAddDescription,
	}
	if strings.TrimSpace(raw.ID) == "" {
		raw.ID = uuid.NewString()
	}
	e, err := forecast.Normalize(raw)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.SaveEntries([]model.CashEntry{e}); err != nil {
		return err
	}
	fmt.Printf("  Saved %s %s on %s (id %s)\n", e.Kind, formatMoney(e.Amount), model.DayKey(e.ExpectedDate), e.ID)
	return nil
}

func runEntriesRm(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ok, err := s.DeleteEntry(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no entry with id " + args[0])
	}
	fmt.Printf("  Deleted entry %s\n", args[0])
	return nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
