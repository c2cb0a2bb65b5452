package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/config"
	"github.com/rgrandy/pybox/pkg/pybox"
)

var (
	serverFlag  string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "pybox",
	Short: "Pybox - remote Python code execution",
	Long: `Pybox executes Python code on a remote server in sandboxed containers.

Point it at a pybox server with --server, the PYBOX_SERVER environment
variable, or a pybox.yaml config file.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "HTTP request timeout (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadClient builds a client from config plus global flag overrides.
func loadClient() (*pybox.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if timeoutFlag > 0 {
		cfg.HTTPTimeout = timeoutFlag
	}

	return pybox.New(cfg.Server, pybox.WithTimeout(cfg.HTTPTimeout)), cfg, nil
}

// sourceFromArg turns a positional argument into an archive source:
// a .tar file is used as pre-built archive bytes, anything else is a
// file or directory path.
func sourceFromArg(arg string) (pybox.Source, error) {
	if strings.HasSuffix(arg, ".tar") {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		return pybox.Tar(data), nil
	}
	return pybox.Path(arg), nil
}

func printResult(result *pybox.ExecutionResult) {
	if result.Stdout != "" {
		fmt.Print(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "execution error: %s\n", result.Error)
	}
}
