package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/streambuf/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts store transfer tuning knobs (buffer capacity, chunk sizes,
progress interval), similar to kubectl's context management.

Configuration is stored in ~/.streambuf/streambuf/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  streambuf config add-context fast --capacity 1048576 --read-chunk 65536 --write-chunk 65536
  streambuf config add-context careful --capacity 4096 --timeout 30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		capacity, err := cmd.Flags().GetInt("capacity")
		if err != nil {
			return fmt.Errorf("failed to read 'capacity' flag: %w", err)
		}

		readChunk, err := cmd.Flags().GetInt("read-chunk")
		if err != nil {
			return fmt.Errorf("failed to read 'read-chunk' flag: %w", err)
		}

		writeChunk, err := cmd.Flags().GetInt("write-chunk")
		if err != nil {
			return fmt.Errorf("failed to read 'write-chunk' flag: %w", err)
		}

		progressInterval, err := cmd.Flags().GetInt64("progress-interval")
		if err != nil {
			return fmt.Errorf("failed to read 'progress-interval' flag: %w", err)
		}

		timeout, err := cmd.Flags().GetInt("timeout")
		if err != nil {
			return fmt.Errorf("failed to read 'timeout' flag: %w", err)
		}

		ctx := &cli.Context{
			Capacity:         capacity,
			ReadChunk:        readChunk,
			WriteChunk:       writeChunk,
			ProgressInterval: progressInterval,
			Timeout:          timeout,
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configGetContextsCmd = &cobra.Command{
	Use:   "get-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tCAPACITY\tREAD CHUNK\tWRITE CHUNK")
		for _, name := range cfg.ListContexts() {
			ctx, _ := cfg.GetContext(name)
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				current, name, ctx.Capacity, ctx.ReadChunk, ctx.WriteChunk)
		}
		return w.Flush()
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Show the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		ctx, err := cfg.GetCurrentContext()
		if err != nil {
			return err
		}
		return cli.Output(ctx, cli.OutputOptions{Format: outputFormat()})
	},
}

func init() {
	configAddContextCmd.Flags().Int("capacity", 0, "ring buffer capacity in bytes")
	configAddContextCmd.Flags().Int("read-chunk", 0, "consumer read chunk size in bytes")
	configAddContextCmd.Flags().Int("write-chunk", 0, "producer write chunk size in bytes")
	configAddContextCmd.Flags().Int64("progress-interval", 0, "minimum bytes between progress reports")
	configAddContextCmd.Flags().Int("timeout", 0, "transfer timeout in seconds")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextsCmd)
	configCmd.AddCommand(configCurrentContextCmd)
}
