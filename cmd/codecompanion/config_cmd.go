package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codefionn/codecompanion/internal/config"
	"github.com/codefionn/codecompanion/internal/secrets"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and inspect the configuration",
		// The file may not exist or be broken yet, so it is not loaded here.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	}

	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a), newConfigEncryptKeyCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			defer a.keys.Clear()

			shown := *a.cfg
			shown.Model = a.cfg.ModelName()
			if a.keys.Has(a.cfg.Provider) {
				shown.APIKey = "[redacted]"
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(shown)
		},
	}
}

func newConfigEncryptKeyCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "encrypt-key",
		Short: "Encrypt an API key for the config file",
		Long: `Reads an API key and a password, and prints the key encrypted for the api_key
field. Set ` + config.EnvPrefix + `SECRETS_PASSWORD to the same password to use it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := cmd.InOrStdin()
			in := bufio.NewReader(src)
			key, err := promptSecret(cmd.ErrOrStderr(), src, in, "API key: ")
			if err != nil {
				return err
			}
			password, err := promptSecret(cmd.ErrOrStderr(), src, in, "Password: ")
			if err != nil {
				return err
			}
			if key == "" || password == "" {
				return errors.New("API key and password must not be empty")
			}

			encrypted, err := secrets.Encrypt(key, password)
			if err != nil {
				return err
			}

			if !save {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), encrypted)
				return err
			}
			return saveEncryptedKey(a.configPath(), encrypted, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the encrypted key in the config file")
	return cmd
}

// saveEncryptedKey updates only api_key so other settings keep their
// file values instead of being replaced by environment overrides.
func saveEncryptedKey(path, encrypted string, out io.Writer) error {
	cfg := config.DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return err
	}

	cfg.APIKey = encrypted
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "Stored encrypted api_key in %s\n", path)
	return err
}

// promptSecret reads one line, without echo when src is a terminal.
func promptSecret(prompt io.Writer, src io.Reader, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(prompt, label)

	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
