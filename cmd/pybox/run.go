package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/config"
	"github.com/rgrandy/pybox/pkg/pybox"
)

var (
	entrypointFlag   string
	requirementsFlag string
	envFlags         []string
	stdinFlag        bool
	imageFlag        string
	execTimeoutFlag  int
	memoryFlag       int
	diskFlag         int
	cpuFlag          int
	networkFlag      bool
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory|archive.tar> [-- script-args...]",
	Short: "Execute code synchronously and print the output",
	Long: `Execute Python code on the server and wait for the result.

The argument is a single file, a directory (every file in it is included),
or a pre-built tar archive. Without --entrypoint the script to run is
inferred (main.py, then __main__.py, then the first .py file).

Arguments after -- are passed to the script.

Examples:
  pybox run script.py
  pybox run ./myproject --entrypoint app/main.py
  pybox run script.py --requirements requirements.txt --network
  echo "4 2" | pybox run calc.py --stdin -- --round`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecution,
}

func init() {
	addExecFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addExecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entrypointFlag, "entrypoint", "", "Script to run (inferred if not set)")
	cmd.Flags().StringVar(&requirementsFlag, "requirements", "", "Path to a requirements.txt to install first")
	cmd.Flags().StringArrayVarP(&envFlags, "env", "e", nil, "Environment variable (KEY=value, repeatable)")
	cmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Forward standard input to the script")
	cmd.Flags().StringVar(&imageFlag, "image", "", "Runtime image (overrides config)")
	cmd.Flags().IntVar(&execTimeoutFlag, "exec-timeout", 0, "Execution time limit (seconds)")
	cmd.Flags().IntVar(&memoryFlag, "memory", 0, "Memory limit (MB)")
	cmd.Flags().IntVar(&diskFlag, "disk", 0, "Disk limit (MB)")
	cmd.Flags().IntVar(&cpuFlag, "cpu", 0, "CPU shares")
	cmd.Flags().BoolVar(&networkFlag, "network", false, "Allow network access")
}

func runExecution(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	src, err := sourceFromArg(args[0])
	if err != nil {
		return err
	}

	opts, err := execOptionsFromFlags(cmd, cfg, args[1:])
	if err != nil {
		return err
	}

	result, err := client.ExecuteSync(cmd.Context(), src, opts...)
	if err != nil {
		return err
	}

	printResult(result)
	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
	return nil
}

// execOptionsFromFlags merges command-line flags with config defaults into
// shorthand submission options.
func execOptionsFromFlags(cmd *cobra.Command, cfg *config.Config, scriptArgs []string) ([]pybox.ExecOption, error) {
	var opts []pybox.ExecOption

	if entrypointFlag != "" {
		opts = append(opts, pybox.WithEntrypoint(entrypointFlag))
	}

	if requirementsFlag != "" {
		contents, err := os.ReadFile(requirementsFlag)
		if err != nil {
			return nil, fmt.Errorf("reading requirements: %w", err)
		}
		opts = append(opts, pybox.WithRequirements(string(contents)))
	}

	if len(envFlags) > 0 {
		opts = append(opts, pybox.WithEnv(envFlags...))
	}

	if stdinFlag {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		opts = append(opts, pybox.WithStdin(string(data)))
	}

	image := imageFlag
	if image == "" {
		image = cfg.Defaults.Image
	}
	if image != "" {
		opts = append(opts, pybox.WithImage(image))
	}

	if len(scriptArgs) > 0 {
		opts = append(opts, pybox.WithArgs(scriptArgs...))
	}

	execCfg := pybox.ExecutionConfig{
		TimeoutSeconds:  firstNonZero(execTimeoutFlag, cfg.Defaults.TimeoutSeconds),
		MemoryMB:        firstNonZero(memoryFlag, cfg.Defaults.MemoryMB),
		DiskMB:          firstNonZero(diskFlag, cfg.Defaults.DiskMB),
		CPUShares:       firstNonZero(cpuFlag, cfg.Defaults.CPUShares),
		NetworkDisabled: !(networkFlag || cfg.Defaults.Network),
	}
	if execCfg != (pybox.ExecutionConfig{NetworkDisabled: true}) {
		opts = append(opts, pybox.WithConfig(execCfg))
	}

	return opts, nil
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
