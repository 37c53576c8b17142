// Command studynotes turns PDF lecture notes into summaries, quizzes and flashcards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/ui"
)

var (
	verbose bool
	noColor bool

	cfg     *common.Config
	logger  *zap.Logger
	console *ui.Console
)

var rootCmd = &cobra.Command{
	Use:   "studynotes",
	Short: "Study assistant for PDF notes",
	Long: `studynotes extracts the text of a PDF and uses a language model to
produce a summary, a quiz and flashcards built from that summary.

Set GEMINI_API_KEY (or OPENAI_API_KEY) to enable generation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		var err error
		logger, err = newLogger(verbose, cmd.Name() == "serve")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		console = ui.Stdio(noColor)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newDBHealthCmd())
	rootCmd.AddCommand(newExtractCmd())
}

// newLogger logs JSON to stderr. Interactive commands only show warnings
// unless verbose is set, so logs do not drown the study output.
func newLogger(verbose, server bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	switch {
	case verbose:
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case server:
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
