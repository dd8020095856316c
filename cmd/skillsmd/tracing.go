package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsmd/skillsmd/pkg/logger"
	"github.com/skillsmd/skillsmd/pkg/telemetry"
	"github.com/skillsmd/skillsmd/pkg/version"
)

var (
	tracer          = telemetry.Tracer("skillsmd.cli")
	tracingShutdown func(context.Context) error
	commandSpan     trace.Span
)

// startTracing initializes the tracer provider and opens a span covering the
// command invocation. Called from the root PersistentPreRunE after flags are
// parsed so the tracing.* settings are bound.
func startTracing(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg := telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    "skillsmd",
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
	}

	shutdown, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		// Tracing failures must not break the CLI
		logger.G(ctx).WithError(err).Warn("failed to initialize tracing")
		return nil
	}
	tracingShutdown = shutdown

	if !cfg.Enabled {
		return nil
	}

	attrs := []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
	}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
	})

	ctx, span := tracer.Start(ctx, "cli.command", trace.WithAttributes(attrs...))
	commandSpan = span
	cmd.SetContext(ctx)

	return nil
}

// stopTracing ends the command span and flushes the exporter.
func stopTracing(ctx context.Context) error {
	if commandSpan != nil {
		commandSpan.End()
	}
	if tracingShutdown != nil {
		return tracingShutdown(ctx)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	rootCmd.PersistentFlags().String("tracing-sampler", "always", "Tracing sampler type (always, never, ratio)")
	rootCmd.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", rootCmd.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", rootCmd.PersistentFlags().Lookup("tracing-ratio"))
}
