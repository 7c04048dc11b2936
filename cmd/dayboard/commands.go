package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uitable"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/kalambet/dayboard/internal/api"
	"github.com/kalambet/dayboard/internal/config"
	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/storage"
	"github.com/kalambet/dayboard/internal/tui"
)

// --- dashboard ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's tasks, six-week goals, and this week's plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var view planner.View
		if err := client.getJSON(cmd.Context(), "/api/dashboard", &view); err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		printDashboard(cmd.OutOrStdout(), view)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <task-id>",
	Short: "Flip the completion state of one of today's tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var view planner.View
		if err := client.postJSON(cmd.Context(), "/api/dashboard/tasks/"+args[0]+"/toggle", nil, &view); err != nil {
			return err
		}
		for _, t := range view.Tasks {
			if t.ID != args[0] {
				continue
			}
			if t.Completed {
				printSuccess("Completed %q", t.Text)
			} else {
				printSuccess("Reopened %q", t.Text)
			}
		}
		printStatus("Progress", "%d/%d done", view.Completed, view.Total)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().Bool("json", false, "print the raw dashboard JSON")
}

// --- journal ---

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Write, read, and reflect on journal entries",
}

var journalLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent journal entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var res api.JournalResult
		if err := client.getJSON(cmd.Context(), "/api/journal/latest", &res); err != nil {
			return err
		}
		if res.Entry == nil {
			printWarning("No journal entries yet")
			return nil
		}
		printJournalEntry(cmd.OutOrStdout(), *res.Entry, time.Now())
		return nil
	},
}

var journalWriteCmd = &cobra.Command{
	Use:   "write [text...]",
	Short: "Append a journal entry (reads stdin when no text is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := argsOrStdin(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			return errors.New(planner.MsgJournalEmpty)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var res api.JournalResult
		if err := client.postJSON(cmd.Context(), "/api/journal", api.JournalBody{Content: content}, &res); err != nil {
			return err
		}
		if res.Message != "" {
			printSuccess("%s", res.Message)
		} else {
			printSuccess("Journal entry saved")
		}
		return nil
	},
}

var journalPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print a random journaling prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var res struct {
			Prompt string `json:"prompt"`
		}
		if err := client.getJSON(cmd.Context(), "/api/journal/prompt", &res); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Prompt)
		return nil
	},
}

var journalImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a text, markdown, HTML, or PDF file as a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		req := api.ImportRequest{
			Filename: filepath.Base(args[0]),
			Content:  base64.StdEncoding.EncodeToString(data),
		}
		var res api.JournalResult
		if err := client.postJSON(cmd.Context(), "/api/journal/import", req, &res); err != nil {
			return err
		}
		if res.Entry != nil {
			printSuccess("Imported %s as entry %s", req.Filename, res.Entry.ID)
		}
		return nil
	},
}

var journalReflectCmd = &cobra.Command{
	Use:   "reflect [text...]",
	Short: "Generate a short reflection (defaults to the latest entry)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		entry := strings.Join(args, " ")
		if strings.TrimSpace(entry) == "" {
			var latest api.JournalResult
			if err := client.getJSON(cmd.Context(), "/api/journal/latest", &latest); err != nil {
				return err
			}
			if latest.Entry == nil {
				return errors.New("no journal entry to reflect on")
			}
			entry = latest.Entry.Content
		}

		printStep("Generating reflection...")
		var res api.GenerateResponse
		if err := client.postJSON(cmd.Context(), "/api/generate-journal-response", api.GenerateRequest{JournalEntry: entry}, &res); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), wordwrap.String(res.Response, textWidth))
		return nil
	},
}

func init() {
	journalCmd.AddCommand(journalLatestCmd)
	journalCmd.AddCommand(journalWriteCmd)
	journalCmd.AddCommand(journalPromptCmd)
	journalCmd.AddCommand(journalImportCmd)
	journalCmd.AddCommand(journalReflectCmd)
}

func argsOrStdin(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// --- daily ---

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show or edit today's plan",
}

var dailyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var draft planner.DailyDraft
		if err := client.getJSON(cmd.Context(), "/api/daily-plan", &draft); err != nil {
			return err
		}
		printDailyPlan(cmd.OutOrStdout(), draft)
		return nil
	},
}

var dailySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update today's plan",
	Long: `Update today's plan. Only the given parts change.

Examples:
  dayboard daily set --top "Ship release" --top "Review PRs"
  dayboard daily set --task "Groceries" --task "Call mom"
  dayboard daily set --notes "Low energy day"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tops, _ := cmd.Flags().GetStringArray("top")
		tasks, _ := cmd.Flags().GetStringArray("task")
		notes, _ := cmd.Flags().GetString("notes")

		var edit dailyEdit
		if cmd.Flags().Changed("top") {
			edit.top = tops
		}
		if cmd.Flags().Changed("task") {
			edit.tasks = tasks
		}
		if cmd.Flags().Changed("notes") {
			edit.notes = &notes
		}
		if edit.empty() {
			return errors.New("one of --top, --task, or --notes is required")
		}
		if len(edit.top) > 3 {
			return errors.New("at most three --top tasks are allowed")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var current planner.DailyDraft
		if err := client.getJSON(cmd.Context(), "/api/daily-plan", &current); err != nil {
			return err
		}

		var saved planner.DailyDraft
		if err := client.putJSON(cmd.Context(), "/api/daily-plan", edit.apply(current), &saved); err != nil {
			return err
		}
		printSuccess("Daily plan saved")
		printDailyPlan(cmd.OutOrStdout(), saved)
		return nil
	},
}

func init() {
	dailySetCmd.Flags().StringArray("top", nil, "top task (repeat up to three times)")
	dailySetCmd.Flags().StringArray("task", nil, "additional task (repeatable, replaces the list)")
	dailySetCmd.Flags().String("notes", "", "notes for the day")
	dailyCmd.AddCommand(dailyShowCmd)
	dailyCmd.AddCommand(dailySetCmd)
}

// dailyEdit is a partial update of today's plan. Nil fields are left alone.
type dailyEdit struct {
	top   []string
	tasks []string
	notes *string
}

func (e dailyEdit) empty() bool {
	return e.top == nil && e.tasks == nil && e.notes == nil
}

// apply overlays e on d, reusing existing task IDs position by position so
// completion flags survive a rename.
func (e dailyEdit) apply(d planner.DailyDraft) planner.DailyDraft {
	if e.top != nil {
		for i := range d.TopTasks {
			if i < len(e.top) {
				d.TopTasks[i].Text = e.top[i]
			} else {
				d.TopTasks[i].Text = ""
			}
		}
	}
	if e.tasks != nil {
		d.AdditionalTasks = overlayTasks(d.AdditionalTasks, e.tasks)
	}
	if e.notes != nil {
		d.Notes = *e.notes
	}
	return d
}

func overlayTasks(existing []storage.TaskItem, texts []string) []storage.TaskItem {
	out := make([]storage.TaskItem, len(texts))
	for i, text := range texts {
		if i < len(existing) {
			out[i] = existing[i]
		}
		out[i].Text = text
	}
	return out
}

// --- weekly ---

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show or edit this week's plan",
}

var weeklyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show this week's plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var body api.WeeklyPlanBody
		if err := client.getJSON(cmd.Context(), "/api/weekly-plan", &body); err != nil {
			return err
		}
		printWeeklyPlan(cmd.OutOrStdout(), body)
		return nil
	},
}

var weeklySetCmd = &cobra.Command{
	Use:   "set <day> [task...]",
	Short: "Replace the tasks for one weekday (no tasks clears the day)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := normalizeDay(args[0])

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var body api.WeeklyPlanBody
		if err := client.getJSON(cmd.Context(), "/api/weekly-plan", &body); err != nil {
			return err
		}
		if body.Tasks == nil {
			body.Tasks = make(map[string][]string)
		}
		body.Tasks[day] = append([]string{}, args[1:]...)

		var saved api.WeeklyPlanBody
		if err := client.putJSON(cmd.Context(), "/api/weekly-plan", api.WeeklyPlanBody{Tasks: body.Tasks}, &saved); err != nil {
			return err
		}
		printSuccess("Saved %s for the week of %s", day, saved.Week)
		return nil
	},
}

func init() {
	weeklyCmd.AddCommand(weeklyShowCmd)
	weeklyCmd.AddCommand(weeklySetCmd)
}

// normalizeDay maps "mon", "monday", or "MONDAY" to "Monday". Unknown input
// is returned unchanged for the server to reject.
func normalizeDay(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return s
	}
	for _, d := range planner.Weekdays {
		if strings.HasPrefix(strings.ToLower(d), s) {
			return d
		}
	}
	return s
}

// --- goals ---

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show or replace the six-week goals",
}

var goalsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current six-week goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var body api.GoalsBody
		if err := client.getJSON(cmd.Context(), "/api/six-week-goals", &body); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), colorize(colorTitle, "Six-week goals"))
		printList(cmd.OutOrStdout(), body.Goals)
		return nil
	},
}

var goalsSetCmd = &cobra.Command{
	Use:   "set <goal>...",
	Short: "Save a new six-week goals snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var saved api.GoalsBody
		if err := client.postJSON(cmd.Context(), "/api/six-week-goals", api.GoalsBody{Goals: args}, &saved); err != nil {
			return err
		}
		printSuccess("Saved %d goals", len(saved.Goals))
		return nil
	},
}

func init() {
	goalsCmd.AddCommand(goalsShowCmd)
	goalsCmd.AddCommand(goalsSetCmd)
}

// --- ui ---

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return errors.New("dayboard ui needs an interactive terminal")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// The TUI owns the screen, so logs go to a file.
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		logFile, err := os.OpenFile(filepath.Join(cfg.Storage.DataDir, "dayboard-ui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()
		setupLogging(cfg, logFile)

		clock, err := plannerClock(cfg)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		return tui.Run(ctx, tui.Deps{
			Store:     store,
			Responder: newResponder(cfg),
			Clock:     clock,
			DBPath:    store.DBPath(),
		})
	},
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve dayboard tools over MCP on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// stdout carries the protocol.
		setupLogging(cfg, os.Stderr)

		clock, err := plannerClock(cfg)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mcpSrv := api.NewMCPServer(api.MCPDeps{Store: store, Clock: clock}, version)
		slog.Info("MCP server started (stdio transport)", "driver", store.Driver())
		err = server.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), config.ShowAll(cfg))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
		}
		printSuccess("Set %s", key)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

func printConfig(w io.Writer, keys []config.KeyInfo) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(colorize(colorBold, "KEY"), colorize(colorBold, "VALUE"), colorize(colorBold, "ENV"))
	for _, k := range keys {
		tbl.AddRow(k.Key, k.Value, colorize(colorFaint, k.EnvVar))
	}
	fmt.Fprintln(w, tbl)
}
