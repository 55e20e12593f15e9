// Command sigcheck reports whether the context menu signatures resolve in a
// game executable.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/fengyoulin/ctxmenu"
	"github.com/fengyoulin/ctxmenu/internal/sigscan"
)

var errMissing = errors.New("required signature missing")

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		exe     string
		proc    string
		all     bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:           "sigcheck",
		Short:         "Check context menu signatures against a game executable",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			path := exe
			if path == "" {
				if proc == "" {
					return errors.New("one of --exe or --process is required")
				}
				p, err := findExecutable(proc)
				if err != nil {
					log.Error("cannot find process", slog.String("process", proc), slog.Any("error", err))
					return err
				}
				path = p
			}
			log.Debug("scanning", slog.String("path", path))

			s, err := sigscan.FromFile(path)
			if err != nil {
				log.Error("cannot load executable", slog.String("path", path), slog.Any("error", err))
				return err
			}
			results := check(s, ctxmenu.Signatures, all)
			fmt.Fprint(cmd.OutOrStdout(), render(path, s.Base(), results))
			if missingRequired(results) {
				return errMissing
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&exe, "exe", "e", "", "Path to the game executable")
	cmd.Flags().StringVarP(&proc, "process", "p", "", "Name of a running game process to take the executable from")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every match instead of the first")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	cmd.MarkFlagsMutuallyExclusive("exe", "process")
	return cmd
}

// findExecutable returns the image path of the first running process whose
// name matches, ignoring case.
func findExecutable(name string) (string, error) {
	procs, err := process.Processes()
	if err != nil {
		return "", err
	}
	for _, p := range procs {
		n, err := p.Name()
		if err != nil || !strings.EqualFold(n, name) {
			continue
		}
		exe, err := p.Exe()
		if err != nil {
			return "", fmt.Errorf("pid %d: %w", p.Pid, err)
		}
		return exe, nil
	}
	return "", fmt.Errorf("process not found: %q", name)
}
