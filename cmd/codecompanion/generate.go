package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/flows"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate DESCRIPTION...",
		Short: "Generate Java code from a natural language description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := a.service()
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := svc.GenerateJavaCode(cmd.Context(), flows.GenerateJavaCodeInput{
				Description: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			return a.writeCode(cmd.OutOrStdout(), out.Code)
		},
	}
}
