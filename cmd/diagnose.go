package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadscope/sitediag/internal/diagnose"
	"github.com/leadscope/sitediag/internal/observe"
	"github.com/leadscope/sitediag/internal/report"
	"github.com/leadscope/sitediag/internal/runner"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <url>",
	Short: "Diagnose a single website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := runner.NormalizeURL(args[0])
		if url == "" {
			return sharedErrors.ErrEmptyURL
		}
		noSave, _ := cmd.Flags().GetBool("no-save")
		observeEnabled, _ := cmd.Flags().GetBool("observe")

		engine := buildEngine()
		timeout := time.Duration(cliConfig.Diagnose.TimeoutSecs) * time.Second
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		result := engine.Diagnose(ctx, url)

		if observeEnabled {
			attachObservation(ctx, result)
		}

		printResult(result)

		if !noSave {
			repo, err := report.NewRepository(resultsDir)
			if err != nil {
				return err
			}
			filename, err := repo.Save(result)
			if err != nil {
				return err
			}
			fmt.Printf("%s Saved to %s\n", colorInfo("→"), filename)
		}
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().Bool("no-save", false, "Print the result without saving it")
	diagnoseCmd.Flags().Bool("observe", false, "Attach a written technical observation (needs observer.api_key or GROQ_API_KEY)")
	diagnoseCmd.Flags().StringVar(&cliConfig.Diagnose.UserAgent, "user-agent", cliConfig.Diagnose.UserAgent, "Override the browser user agent")
}

func buildEngine() *diagnose.Engine {
	return diagnose.NewEngine(diagnose.Config{
		UserAgent:   cliConfig.Diagnose.UserAgent,
		SlowPaintMS: cliConfig.Diagnose.SlowPaintMS,
	}, logger)
}

func buildObserver() observe.Observer {
	return observe.New(observe.Config{
		APIKey:  cliConfig.Observer.APIKey,
		BaseURL: cliConfig.Observer.BaseURL,
		Model:   cliConfig.Observer.Model,
	})
}

// attachObservation fills in the technical observation when an observer is
// configured. Failures are logged, never fatal.
func attachObservation(ctx context.Context, result *diagnose.Result) {
	observation, err := buildObserver().Observe(ctx, observe.Input{
		Tech:       result.Tech,
		ErrorCount: result.ConsoleErrorCount,
		LoadTime:   result.LoadTime,
	})
	switch {
	case err == nil:
		result.TechnicalObservation = observation
	case errors.Is(err, sharedErrors.ErrObserverDisabled):
		fmt.Printf("%s Observer disabled: no API key configured\n", colorWarn("!"))
	default:
		logger.Warnw("observation failed", "url", result.URL, "error", err)
	}
}

func printResult(r *diagnose.Result) {
	fmt.Printf("\n%s %s\n", colorInfo("Domain:"), r.Domain)
	fmt.Printf("%s %s\n", colorInfo("Tech:"), r.Tech)
	fmt.Printf("%s %s\n", colorInfo("Status:"), formatStatusWithColor(string(r.Status)))
	fmt.Printf("%s %s\n", colorInfo("Load time:"), r.LoadTime)
	fmt.Printf("%s %d\n", colorInfo("Console errors:"), r.ConsoleErrorCount)

	if len(r.Vulnerabilities) > 0 {
		fmt.Printf("%s %d vulnerable signature(s)\n", colorError("Vulnerabilities:"), len(r.Vulnerabilities))
		for _, v := range r.Vulnerabilities {
			fmt.Printf("  %s %s %s\n", colorError("•"), v.Type, v.Version)
		}
	}
	if r.TechnicalObservation != "" {
		fmt.Printf("%s %s\n", colorInfo("Observation:"), r.TechnicalObservation)
	}
	if r.Error != "" {
		fmt.Printf("%s %s\n", colorError("Error:"), r.Error)
	}
}
