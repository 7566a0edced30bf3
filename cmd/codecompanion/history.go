package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generate and explain runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.HistoryPath == "" {
				return errors.New("history is disabled (history_path is empty)")
			}
			if limit <= 0 {
				limit = a.cfg.HistoryLimit
			}

			store, err := history.Open(a.cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, err := fmt.Fprintln(out, "No runs yet.")
				return err
			}
			_, err = fmt.Fprintln(out, historyTable(runs, a.isTTY(out)))
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of runs to show (default from config)")
	return cmd
}

func historyTable(runs []*history.Run, styled bool) string {
	t := table.New().
		Headers("WHEN", "KIND", "MODEL", "DURATION", "RESULT", "INPUT")

	if styled {
		header := lipgloss.NewStyle().Bold(true)
		t = t.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	} else {
		t = t.Border(lipgloss.HiddenBorder())
	}

	for _, run := range runs {
		result := "generated"
		if run.Kind == history.KindExplain {
			result = "no errors"
			if run.HasError {
				result = "errors found"
			}
		}
		t.Row(
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(run.Kind),
			run.Model,
			fmt.Sprintf("%dms", run.Duration.Milliseconds()),
			result,
			oneLine(run.Input, 48),
		)
	}
	return t.String()
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return s
}
