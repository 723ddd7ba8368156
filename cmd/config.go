package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConcurrency   = 2
	defaultRateLimit     = 1
	defaultRunTimeoutSec = 90
	defaultSlowPaintMS   = 3000
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Diagnose DiagnoseRuntimeConfig
	Observer ObserverConfig
}

// DiagnoseRuntimeConfig consolidates flag-driven settings for diagnose commands.
type DiagnoseRuntimeConfig struct {
	Concurrency     int
	RateLimit       int
	TimeoutSecs     int
	UserAgent       string
	SlowPaintMS     int
	ProgressEnabled bool
}

// ObserverConfig holds settings for the optional written-observation step.
type ObserverConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Diagnose: DiagnoseRuntimeConfig{
			Concurrency: defaultConcurrency,
			RateLimit:   defaultRateLimit,
			TimeoutSecs: defaultRunTimeoutSec,
			SlowPaintMS: defaultSlowPaintMS,
		},
		Observer: ObserverConfig{
			APIKey: os.Getenv("GROQ_API_KEY"),
		},
	}
}

// applyConfigDefaults merges config file defaults into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("diagnose.concurrency") {
		applyIntDefault(batchCmd.Flags(), "concurrency", viper.GetInt("diagnose.concurrency"), func(v int) {
			cliConfig.Diagnose.Concurrency = v
		})
	}
	if viper.IsSet("diagnose.rate_limit") {
		applyIntDefault(batchCmd.Flags(), "rate-limit", viper.GetInt("diagnose.rate_limit"), func(v int) {
			cliConfig.Diagnose.RateLimit = v
		})
	}
	if viper.IsSet("diagnose.timeout_secs") {
		applyIntDefault(batchCmd.Flags(), "timeout", viper.GetInt("diagnose.timeout_secs"), func(v int) {
			cliConfig.Diagnose.TimeoutSecs = v
		})
	}
	if viper.IsSet("diagnose.user_agent") {
		cliConfig.Diagnose.UserAgent = viper.GetString("diagnose.user_agent")
	}
	if viper.IsSet("diagnose.slow_paint_ms") {
		cliConfig.Diagnose.SlowPaintMS = viper.GetInt("diagnose.slow_paint_ms")
	}
	if viper.IsSet("observer.api_key") {
		cliConfig.Observer.APIKey = viper.GetString("observer.api_key")
	}
	if viper.IsSet("observer.base_url") {
		cliConfig.Observer.BaseURL = viper.GetString("observer.base_url")
	}
	if viper.IsSet("observer.model") {
		cliConfig.Observer.Model = viper.GetString("observer.model")
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
