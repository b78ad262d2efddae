package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haivivi/streambuf/pkg/buffer"
	"github.com/haivivi/streambuf/pkg/cli"
)

var (
	benchSize       string
	benchCapacities []int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure ring buffer throughput across tunings",
	Long: `Run a producer/consumer transfer of synthetic data through the ring
buffer for each capacity and report the observed throughput.

Examples:
  streambuf bench
  streambuf bench --size 256MB --capacities 4096,65536,1048576 --json`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchSize, "size", "64MB", "bytes to transfer per run (supports KB/MB/GB suffix)")
	benchCmd.Flags().IntSliceVar(&benchCapacities, "capacities", []int{1 << 12, 1 << 16, 1 << 20}, "buffer capacities to test")
}

// benchReport is the full benchmark result.
type benchReport struct {
	ID   string     `json:"id" yaml:"id"`
	Size int64      `json:"size" yaml:"size"`
	Runs []benchRun `json:"runs" yaml:"runs"`
}

// benchRun is the result of a single capacity run.
type benchRun struct {
	Capacity   int     `json:"capacity" yaml:"capacity"`
	Duration   string  `json:"duration" yaml:"duration"`
	MBPerSec   float64 `json:"mb_per_sec" yaml:"mb_per_sec"`
	Throughput string  `json:"throughput" yaml:"throughput"`
}

func runBench(cmd *cobra.Command, args []string) error {
	tuning, err := getContext()
	if err != nil {
		return err
	}

	size, err := parseSize(benchSize)
	if err != nil {
		return err
	}

	report := benchReport{
		ID:   uuid.NewString(),
		Size: size,
	}

	for _, capacity := range benchCapacities {
		if capacity < 1 {
			return fmt.Errorf("invalid capacity: %d", capacity)
		}
		elapsed, err := benchOnce(capacity, size, tuning.WriteChunk, tuning.ReadChunk)
		if err != nil {
			return fmt.Errorf("bench capacity=%d: %w", capacity, err)
		}
		rate := float64(size) / elapsed.Seconds()
		report.Runs = append(report.Runs, benchRun{
			Capacity:   capacity,
			Duration:   cli.FormatDuration(elapsed),
			MBPerSec:   rate / (1 << 20),
			Throughput: cli.FormatRate(rate),
		})
		cli.PrintVerbose(verbose, "capacity=%d done in %s", capacity, cli.FormatDuration(elapsed))
	}

	return cli.Output(report, cli.OutputOptions{Format: outputFormat()})
}

// benchOnce transfers size synthetic bytes through one buffer and returns
// the elapsed time.
func benchOnce(capacity int, size int64, writeChunk, readChunk int) (time.Duration, error) {
	s := buffer.NewStream(capacity)
	s.SetEstimatedLength(size)

	start := time.Now()
	go func() {
		chunk := make([]byte, writeChunk)
		remaining := size
		for remaining > 0 {
			n := int64(len(chunk))
			if n > remaining {
				n = remaining
			}
			if _, err := s.Write(chunk[:n]); err != nil {
				s.CloseWithError(err)
				return
			}
			remaining -= n
		}
		s.CloseWrite()
	}()

	buf := make([]byte, readChunk)
	var got int64
	for {
		n, err := s.Read(buf)
		got += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
	}
	if got != size {
		return 0, fmt.Errorf("transferred %d bytes, want %d", got, size)
	}
	return time.Since(start), nil
}

// parseSize parses a byte count with an optional KB/MB/GB suffix.
func parseSize(s string) (int64, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	mult := int64(1)
	switch {
	case strings.HasSuffix(v, "GB"):
		mult, v = 1<<30, strings.TrimSuffix(v, "GB")
	case strings.HasSuffix(v, "MB"):
		mult, v = 1<<20, strings.TrimSuffix(v, "MB")
	case strings.HasSuffix(v, "KB"):
		mult, v = 1<<10, strings.TrimSuffix(v, "KB")
	case strings.HasSuffix(v, "B"):
		v = strings.TrimSuffix(v, "B")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return n * mult, nil
}
