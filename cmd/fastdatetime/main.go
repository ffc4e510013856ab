package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/internal/profile"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every persistent flag is bound to v,
// so values come from flags, then FASTDATETIME_* variables, then defaults.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fastdatetime",
		Short:        "Parse date and time strings, free-form or with strftime formats",
		Version:      version,
		SilenceUsage: true,
	}

	// env-derived values become the defaults flags override
	base := &profile.Profile{}
	base.FromEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("mode", base.Mode, `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("log-level", base.LogLevel, "log level: debug, info, warn, error")
	flags.Bool("dayfirst", base.DayFirst, "read ambiguous DD/MM before MM/DD")
	flags.Bool("yearfirst", base.YearFirst, "read an ambiguous leading number as the year")
	flags.String("zone-resolution", base.ZoneResolution, `named zone offset: "now" (current offset) or "wall" (offset at the parsed time)`)
	flags.Int("format-cache-size", base.FormatCacheSize, "number of compiled formats to keep")
	flags.Int("batch-concurrency", base.BatchConcurrency, "parallel workers per batch")
	flags.Bool("json", false, "print results as JSON")

	for _, key := range []string{"mode", "log-level", "dayfirst", "yearfirst", "zone-resolution", "format-cache-size", "batch-concurrency", "json"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix(strings.ToLower(profile.EnvPrefix))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	app := &app{v: v, base: base}
	rootCmd.AddCommand(
		app.parseCmd(),
		app.strptimeCmd(),
		app.formatCmd(),
		app.batchCmd(),
		app.serveCmd(),
	)
	return rootCmd
}

// app holds the state shared by subcommands.
type app struct {
	v    *viper.Viper
	base *profile.Profile
}

// loadProfile merges viper values over the env-derived base profile.
func (a *app) loadProfile() (*profile.Profile, error) {
	p := *a.base
	p.Version = version
	p.Mode = a.v.GetString("mode")
	p.LogLevel = a.v.GetString("log-level")
	p.DayFirst = a.v.GetBool("dayfirst")
	p.YearFirst = a.v.GetBool("yearfirst")
	p.ZoneResolution = a.v.GetString("zone-resolution")
	p.FormatCacheSize = a.v.GetInt("format-cache-size")
	p.BatchConcurrency = a.v.GetInt("batch-concurrency")
	if a.v.IsSet("addr") {
		p.Addr = a.v.GetString("addr")
	}
	if a.v.IsSet("port") {
		p.Port = a.v.GetInt("port")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func newLogger(p *profile.Profile) *slog.Logger {
	opts := &slog.HandlerOptions{Level: p.SlogLevel()}
	if p.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func newService(p *profile.Profile, logger *slog.Logger) *dateparse.Service {
	return dateparse.NewService(
		dateparse.WithZoneResolution(p.ZoneMode()),
		dateparse.WithCacheSize(p.FormatCacheSize),
		dateparse.WithBatchConcurrency(p.BatchConcurrency),
		dateparse.WithLogger(logger),
		dateparse.WithMetrics(observability.GlobalMetrics()),
	)
}

// setup loads the profile and builds the logger and service.
func (a *app) setup() (*profile.Profile, *slog.Logger, *dateparse.Service, error) {
	p, err := a.loadProfile()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "invalid configuration")
	}
	logger := newLogger(p)
	slog.SetDefault(logger)
	return p, logger, newService(p, logger), nil
}
