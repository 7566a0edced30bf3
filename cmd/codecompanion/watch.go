package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/flows"
	"github.com/codefionn/codecompanion/internal/logger"
)

func newWatchCmd(a *app) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Explain errors in a Java file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return err
			}

			svc, _, cleanup, err := a.service()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)
			return a.watch(cmd.Context(), path, delay, func(ctx context.Context) error {
				return a.explainFile(ctx, out, svc, path)
			})
		},
	}

	cmd.Flags().DurationVar(&delay, "debounce", consts.LiveAnalysisDebounce, "quiet period after a change before analyzing")
	return cmd
}

func (a *app) explainFile(ctx context.Context, w io.Writer, svc *flows.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n== %s (%s)\n", filepath.Base(path), time.Now().Format("15:04:05"))
	if err := flows.CheckLength("java code", string(data), consts.MinJavaCodeLength); err != nil {
		_, werr := fmt.Fprintln(w, err)
		return werr
	}
	return a.explainTo(ctx, w, svc, string(data))
}

// watch runs onChange once at start and again after every burst of writes
// to path. The parent directory is watched because editors often replace
// the file on save. Model errors are reported and watching continues.
func (a *app) watch(ctx context.Context, path string, delay time.Duration, onChange func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(delay, func() {
					select {
					case changes <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error: %v", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				if err := onChange(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					logger.Warn("analysis of %s failed: %v", path, err)
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				}
			}
		}
	})

	return g.Wait()
}
