package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/streambuf/pkg/cli"
)

const appName = "streambuf"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streambuf",
	Short: "Bounded ring-buffer stream tool",
	Long: `streambuf - move bytes between a producer and a consumer through a
fixed-capacity blocking ring buffer.

The buffer gives backpressure: a fast producer blocks while a slow consumer
catches up, so memory use stays bounded no matter how large the transfer is.

Tuning knobs (capacity, chunk sizes, progress interval) can be stored in
named contexts in ~/.streambuf/streambuf/config.yaml, similar to kubectl's
context management.

Examples:
  # Copy a file through a 64KB ring buffer with a progress bar
  streambuf pipe big.iso /mnt/backup/big.iso --progress

  # Pipe stdin to stdout with a small buffer, keeping a shadow copy
  tar cf - dir | streambuf pipe --capacity 4096 --shadow dir.tar | ssh host 'tar xf -'

  # Benchmark buffer tunings and emit the report as JSON
  streambuf bench --size 64MB --json
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.streambuf/streambuf/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(pipeCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig loads the global configuration
func initConfig() {
	cfg, err := cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		cli.PrintError("Failed to load config: %v", err)
		os.Exit(1)
	}
	globalConfig = cfg
}

// getConfig returns the loaded global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext resolves the active context and applies defaults
func getContext() (*cli.Context, error) {
	ctx, err := getConfig().ResolveContext(contextName)
	if err != nil {
		return nil, err
	}
	ctx.ApplyDefaults()
	return ctx, nil
}

// outputFormat returns the output format selected by global flags
func outputFormat() cli.OutputFormat {
	if outputJSON {
		return cli.FormatJSON
	}
	return cli.FormatYAML
}
