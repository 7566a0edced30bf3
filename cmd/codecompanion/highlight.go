package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/syntax"
)

// readSource reads the file named by args, or stdin for "-" or no argument.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func newHighlightCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "highlight [file|-]",
		Short: "Syntax highlight Java source as HTML or ANSI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, path, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "auto":
				if a.isTTY(out) {
					return writeANSI(out, source, path)
				}
				return writeHTML(out, source)
			case "ansi":
				return writeANSI(out, source, path)
			case "html":
				return writeHTML(out, source)
			default:
				return fmt.Errorf("unknown format %q (want html, ansi or auto)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "output format: html, ansi or auto")
	return cmd
}

func writeHTML(w io.Writer, source string) error {
	_, err := fmt.Fprintln(w, syntax.HighlightJava(source))
	return err
}

func writeANSI(w io.Writer, source, path string) error {
	language := "java"
	if path != "" {
		if detected := syntax.DetectLanguage(path); detected != "" {
			language = detected
		}
	}

	h := ansiHighlighter(w)
	var (
		out string
		err error
	)
	if language == "markdown" {
		out = h.HighlightMarkdownCodeBlocks(source)
	} else {
		out, err = h.Highlight(source, language)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
