package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/streambuf/pkg/buffer"
	"github.com/haivivi/streambuf/pkg/cli"
	"github.com/haivivi/streambuf/pkg/iox"
)

var (
	pipeFile       string
	pipeCapacity   int
	pipeReadChunk  int
	pipeWriteChunk int
	pipeOffset     int64
	pipeShadow     string
	pipeProgress   bool
	pipeTimeout    int
)

// pipeJob is the file form of a transfer, loaded with -f.
type pipeJob struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Capacity    int    `json:"capacity" yaml:"capacity"`
	ReadChunk   int    `json:"read_chunk" yaml:"read_chunk"`
	WriteChunk  int    `json:"write_chunk" yaml:"write_chunk"`
	Offset      int64  `json:"offset" yaml:"offset"`
	Shadow      string `json:"shadow" yaml:"shadow"`
	Timeout     int    `json:"timeout" yaml:"timeout"`
}

var pipeCmd = &cobra.Command{
	Use:   "pipe [src] [dst]",
	Short: "Copy data through a bounded ring buffer",
	Long: `Copy src to dst through a fixed-capacity blocking ring buffer.

src and dst default to stdin and stdout; use "-" explicitly for either.
The producer and consumer run on separate goroutines connected only by the
buffer, so a slow destination applies backpressure to the source instead of
growing memory.

A transfer can also be described in a YAML or JSON job file:

  # job.yaml
  source: big.iso
  destination: copy.iso
  capacity: 65536
  offset: 1048576

Examples:
  streambuf pipe big.iso copy.iso --progress
  cat access.log | streambuf pipe --capacity 8192 > filtered.log
  streambuf pipe dump.bin rest.bin --offset 1048576
  streambuf pipe src.bin dst.bin --shadow audit.bin
  streambuf pipe -f job.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPipe,
}

func init() {
	pipeCmd.Flags().StringVarP(&pipeFile, "file", "f", "", "transfer job file (YAML or JSON)")
	pipeCmd.Flags().IntVar(&pipeCapacity, "capacity", 0, "ring buffer capacity in bytes (default from context)")
	pipeCmd.Flags().IntVar(&pipeReadChunk, "read-chunk", 0, "consumer read chunk size in bytes")
	pipeCmd.Flags().IntVar(&pipeWriteChunk, "write-chunk", 0, "producer write chunk size in bytes")
	pipeCmd.Flags().Int64Var(&pipeOffset, "offset", 0, "skip this many leading bytes of src")
	pipeCmd.Flags().StringVar(&pipeShadow, "shadow", "", "also write everything read from src to this file")
	pipeCmd.Flags().BoolVar(&pipeProgress, "progress", false, "render a progress bar on stderr")
	pipeCmd.Flags().IntVar(&pipeTimeout, "timeout", 0, "abort the transfer after this many seconds")
}

// pipeReport is the transfer summary emitted on completion.
type pipeReport struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Bytes       int64  `json:"bytes" yaml:"bytes"`
	Capacity    int    `json:"capacity" yaml:"capacity"`
	Duration    string `json:"duration" yaml:"duration"`
	Rate        string `json:"rate" yaml:"rate"`
	Shadow      string `json:"shadow,omitempty" yaml:"shadow,omitempty"`
}

func runPipe(cmd *cobra.Command, args []string) error {
	tuning, err := getContext()
	if err != nil {
		return err
	}

	var job pipeJob
	if pipeFile != "" {
		if err := cli.LoadRequest(pipeFile, &job); err != nil {
			return err
		}
		if job.Capacity > 0 {
			tuning.Capacity = job.Capacity
		}
		if job.ReadChunk > 0 {
			tuning.ReadChunk = job.ReadChunk
		}
		if job.WriteChunk > 0 {
			tuning.WriteChunk = job.WriteChunk
		}
		if job.Timeout > 0 {
			tuning.Timeout = job.Timeout
		}
		if job.Offset > 0 && pipeOffset == 0 {
			pipeOffset = job.Offset
		}
		if job.Shadow != "" && pipeShadow == "" {
			pipeShadow = job.Shadow
		}
	}
	if pipeCapacity > 0 {
		tuning.Capacity = pipeCapacity
	}
	if pipeReadChunk > 0 {
		tuning.ReadChunk = pipeReadChunk
	}
	if pipeWriteChunk > 0 {
		tuning.WriteChunk = pipeWriteChunk
	}
	if pipeTimeout > 0 {
		tuning.Timeout = pipeTimeout
	}

	srcName, dstName := "-", "-"
	if job.Source != "" {
		srcName = job.Source
	}
	if job.Destination != "" {
		dstName = job.Destination
	}
	if len(args) > 0 {
		srcName = args[0]
	}
	if len(args) > 1 {
		dstName = args[1]
	}

	var src io.Reader = os.Stdin
	total := int64(-1)
	if srcName != "-" {
		f, err := os.Open(srcName)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
			total = fi.Size() - pipeOffset
			if total < 0 {
				total = 0
			}
		}
		src = f
	}
	if pipeOffset > 0 {
		src = iox.NewOffsetReader(src, pipeOffset)
	}

	var shadow *iox.ShadowReader
	if pipeShadow != "" {
		f, err := os.Create(pipeShadow)
		if err != nil {
			return fmt.Errorf("failed to create shadow file: %w", err)
		}
		defer f.Close()
		shadow = iox.NewShadowReader(src, f)
		src = shadow
	}

	var dst io.Writer = os.Stdout
	if dstName != "-" {
		f, err := os.Create(dstName)
		if err != nil {
			return fmt.Errorf("failed to create destination: %w", err)
		}
		defer f.Close()
		dst = f
	}

	runCtx := cmd.Context()
	if tuning.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, time.Duration(tuning.Timeout)*time.Second)
		defer cancel()
	}

	cli.PrintVerbose(verbose, "capacity=%d read_chunk=%d write_chunk=%d",
		tuning.Capacity, tuning.ReadChunk, tuning.WriteChunk)

	s := buffer.NewStream(tuning.Capacity)
	s.SetEstimatedLength(total)

	start := time.Now()

	// Producer: drain src into the buffer, relaying any source error to the
	// consumer side.
	go func() {
		buf := make([]byte, tuning.WriteChunk)
		for {
			n, rerr := src.Read(buf)
			if n > 0 {
				if _, werr := s.WriteContext(runCtx, buf[:n]); werr != nil {
					s.CloseWithError(werr)
					return
				}
			}
			if rerr != nil {
				if rerr == io.EOF {
					s.CloseWrite()
				} else {
					s.CloseWithError(rerr)
				}
				return
			}
		}
	}()

	var out io.Writer = dst
	var pw *iox.ProgressWriter
	if pipeProgress {
		bar := cli.NewProgressBar()
		pw = iox.NewProgressWriter(dst, total, tuning.ProgressInterval, func(transferred, total int64) {
			rate := float64(transferred) / time.Since(start).Seconds()
			fmt.Fprintf(os.Stderr, "\r%s", bar.Render(transferred, total, rate))
		})
		out = pw
	}

	// Consumer: drain the buffer into dst on this goroutine.
	var written int64
	buf := make([]byte, tuning.ReadChunk)
	for {
		n, rerr := s.ReadContext(runCtx, buf)
		if n > 0 {
			wn, werr := out.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				s.Close()
				return fmt.Errorf("failed to write destination: %w", werr)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			s.Close()
			return fmt.Errorf("transfer failed: %w", rerr)
		}
	}

	elapsed := time.Since(start)
	if pw != nil {
		pw.Flush()
		fmt.Fprintln(os.Stderr)
	}

	report := pipeReport{
		Source:      srcName,
		Destination: dstName,
		Bytes:       written,
		Capacity:    tuning.Capacity,
		Duration:    cli.FormatDuration(elapsed),
		Rate:        cli.FormatRate(float64(written) / elapsed.Seconds()),
		Shadow:      pipeShadow,
	}

	if outputJSON {
		// Keep stdout clean when it carries the transferred data.
		var w io.Writer = os.Stdout
		if dstName == "-" {
			w = os.Stderr
		}
		return cli.Output(report, cli.OutputOptions{Format: cli.FormatJSON, Writer: w})
	}
	if verbose || pipeProgress {
		cli.PrintSuccess("Transferred %s in %s (%s)",
			cli.FormatBytes(report.Bytes), report.Duration, report.Rate)
	}
	return nil
}
