package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/flows"
)

var (
	errorHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okHeading    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [file|-]",
		Short: "Explain errors in Java code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			if err := flows.CheckLength("java code", source, consts.MinJavaCodeLength); err != nil {
				return err
			}

			svc, _, cleanup, err := a.service()
			if err != nil {
				return err
			}
			defer cleanup()

			return a.explainTo(cmd.Context(), cmd.OutOrStdout(), svc, source)
		},
	}
}

func (a *app) explainTo(ctx context.Context, w io.Writer, svc *flows.Service, source string) error {
	out, err := svc.ExplainJavaError(ctx, flows.ExplainJavaErrorInput{JavaCode: source})
	if err != nil {
		return err
	}
	return a.writeExplanation(w, out)
}

func (a *app) writeExplanation(w io.Writer, out flows.ExplainJavaErrorOutput) error {
	heading := "No errors found"
	if out.HasError {
		heading = "Errors found"
	}
	if a.isTTY(w) {
		if out.HasError {
			heading = errorHeading.Render(heading)
		} else {
			heading = okHeading.Render(heading)
		}
	}

	_, err := fmt.Fprintf(w, "%s\n\n%s\n", heading, a.renderMarkdown(w, out.Explanation))
	return err
}
