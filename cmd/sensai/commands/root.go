package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/jagtap-suraj/sensai/cmd/sensai/internal/config"
	"github.com/jagtap-suraj/sensai/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	contextName  string
	formatOutput string
	jqQuery      string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sensai",
	Short: "Practice job interviews with a realtime voice model",
	Long: `sensai - mock voice interviews from the terminal.

Create an interview with 'sensai setup', then talk to the interviewer with
'sensai interview run <id>'. When the interview ends a feedback report is
generated from the transcript and stored with the interview.

Configuration is stored in the OS config directory (or $SENSAI_CONFIG_DIR):
  macOS:   ~/Library/Application Support/sensai/
  Linux:   ~/.config/sensai/
  Windows: %AppData%/sensai/

Examples:
  sensai config add-context dev
  sensai config use-context dev
  sensai config set dev gemini api_key YOUR_KEY

  sensai setup --name Ada --role "Backend Engineer" --level senior --resume cv.pdf
  sensai interview run 3f0c...
  sensai interview list -o table`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context to use (default: current context)")
}

// addOutputFlags registers -o and --jq on commands that print results.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&formatOutput, "output", "o", "yaml", "output format: yaml, json, table or raw")
	cmd.Flags().StringVar(&jqQuery, "jq", "", "jq expression applied to the result")
}

func outputResult(cmd *cobra.Command, result any) error {
	format, err := cli.ParseFormat(formatOutput)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		Query:  jqQuery,
		Writer: cmd.OutOrStdout(),
	})
}

func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		// Commands that need config report it via GetConfig; 'sensai version'
		// keeps working.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// contextDir resolves the --context flag, or the current context.
func contextDir() (string, error) {
	cfg, err := GetConfig()
	if err != nil {
		return "", err
	}
	return cfg.ResolveContext(contextName)
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
