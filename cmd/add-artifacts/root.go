package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mlflow-artifact-uploader/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

type flagBinding struct {
	name  string
	key   string
	usage string
}

var stringFlags = []flagBinding{
	{"config", config.KeyConfigFile, "Config file (yaml, json or toml)"},
	{"tracking-uri", config.KeyTrackingURI, "MLflow tracking server URL"},
	{"host-header", config.KeyHostHeader, "Host header sent with every request; empty disables it"},
	{"experiment", config.KeyExperimentName, "Experiment name"},
	{"models-dir", config.KeyModelsDir, "Directory with <model>_metadata.json and <model>.pkl files"},
	{"work-dir", config.KeyWorkDir, "Directory where generated artifacts are staged"},
	{"timeout", config.KeyHTTPTimeout, "HTTP timeout per request"},
	{"log-level", config.KeyLoggerLevel, "Log level (debug, info, warn, error)"},
	{"log-format", config.KeyLoggerFormat, "Log format (text or json)"},
}

var boolFlags = []flagBinding{
	{"insecure-tls", config.KeyInsecureTLS, "Skip TLS certificate verification"},
	{"resume-run", config.KeyResumeRun, "Mark each updated run RUNNING, then FINISHED or FAILED"},
	{"verify-recursive", config.KeyVerifyRecursive, "List nested artifact files during verification"},
	{"progress", config.KeyProgress, "Show an upload progress bar on stderr"},
}

func newRootCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "add-artifacts",
		Short: "Attach model artifacts to the runs of an MLflow experiment",
		Long: "add-artifacts finds the runs of an experiment, matches each run name to a\n" +
			"trained model and uploads model_info, requirements, metrics, model_config\n" +
			"and the pickled model as run artifacts.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttach(cmd, v)
		},
	}

	flags := cmd.Flags()
	for _, f := range stringFlags {
		flags.String(f.name, "", f.usage+" ($"+f.key+")")
	}
	for _, f := range boolFlags {
		flags.Bool(f.name, false, f.usage+" ($"+f.key+")")
	}
	flags.Int("page-size", 0, "Runs requested per search page ($"+config.KeySearchPageSize+")")

	bindFlags(cmd, v, append(stringFlags, append(boolFlags,
		flagBinding{name: "page-size", key: config.KeySearchPageSize})...))
	return cmd
}

// bindFlags makes explicitly set flags win over env, config file and defaults.
func bindFlags(cmd *cobra.Command, v *viper.Viper, bindings []flagBinding) {
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, cmd.Flags().Lookup(b.name)); err != nil {
			panic(err)
		}
	}
}
