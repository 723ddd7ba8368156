package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadscope/sitediag/internal/diagnose"
	"github.com/leadscope/sitediag/internal/report"
	"github.com/leadscope/sitediag/internal/runner"
)

var batchCmd = &cobra.Command{
	Use:   "batch [urls...]",
	Short: "Diagnose multiple websites concurrently",
	Long: `Diagnose multiple websites with bounded concurrency and rate limiting.
URLs come from positional arguments, from --file (one URL per line, # comments
allowed), or both. Every result is saved to the results directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")
		noProgress, _ := cmd.Flags().GetBool("no-progress")

		urls := append([]string{}, args...)
		if file != "" {
			fromFile, err := readURLFile(file)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no URLs given: pass them as arguments or via --file")
		}

		repo, err := report.NewRepository(resultsDir)
		if err != nil {
			return err
		}
		engine := buildEngine()

		var progress *progressPrinter
		if !noProgress {
			progress = newProgressPrinter(len(urls), "diagnose")
			progress.Start()
		}

		r := &runner.Runner{
			Concurrency: concurrency,
			RateLimit:   rateLimit,
			Timeout:     time.Duration(timeoutSecs) * time.Second,
		}
		results := r.Run(cmd.Context(), urls, engine, func(url string, result *diagnose.Result, duration float64) {
			if _, err := repo.Save(result); err != nil {
				logger.Errorw("failed to save result", "url", url, "error", err)
			}
			if progress != nil {
				progress.Increment(string(result.Status), duration)
			}
		})

		if progress != nil {
			progress.Stop()
		}

		printBatchSummary(results)
		return nil
	},
}

func init() {
	batchCmd.Flags().String("file", "", "File with URLs, one per line")
	batchCmd.Flags().Int("concurrency", defaultConcurrency, "Concurrent browser sessions")
	batchCmd.Flags().Int("rate-limit", defaultRateLimit, "Diagnoses started per second")
	batchCmd.Flags().Int("timeout", defaultRunTimeoutSec, "Per-site timeout in seconds")
	batchCmd.Flags().Bool("no-progress", false, "Disable the progress line")
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}

func printBatchSummary(results []*diagnose.Result) {
	counts := make(map[diagnose.Status]int)
	for _, r := range results {
		if r != nil {
			counts[r.Status]++
		}
	}
	fmt.Printf("\n%s %d diagnosed: %s clean, %s at risk, %s timeout, %s error\n",
		colorInfo("Summary:"), len(results),
		colorSuccess(fmt.Sprint(counts[diagnose.StatusClean])),
		colorWarn(fmt.Sprint(counts[diagnose.StatusAtRisk])),
		colorWarn(fmt.Sprint(counts[diagnose.StatusTimeout])),
		colorError(fmt.Sprint(counts[diagnose.StatusError])),
	)
}
