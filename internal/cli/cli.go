package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/webstack/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlag collects repeated -var name=value flags.
type varFlag map[string]string

func (v varFlag) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, k+"="+val)
	}
	return strings.Join(pairs, ",")
}

func (v varFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	if _, dup := v[name]; dup {
		return fmt.Errorf("variable %q set more than once", name)
	}
	v[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("webstack", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
webstack - Synthesizes the infrastructure declaration of a containerized web
front end and prints it as an ordered provisioning plan.

Usage:
  webstack [options] PATH [PATH...]

Arguments:
  PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	vars := varFlag{}
	flagSet.Var(vars, "var", "Set a declared variable, as name=value. May be repeated.")
	formatFlag := flagSet.String("format", "yaml", "Plan output format. Options: 'yaml' or 'json'.")
	imageFlag := flagSet.String("image", "", "Override the task image reference, e.g. the tag the pipeline just pushed.")
	preflightFlag := flagSet.Bool("preflight-image", false, "Resolve the task image against its registry before writing the plan.")
	insecureFlag := flagSet.Bool("insecure-registry", false, "Allow plain HTTP and unverified TLS registries during the image pre-flight check.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := flagSet.Args()
	if len(paths) == 0 {
		slog.Debug("No declaration path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths:      paths,
		Vars:             vars,
		Image:            strings.TrimSpace(*imageFlag),
		OutputFormat:     strings.ToLower(*formatFlag),
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		PreflightImage:   *preflightFlag,
		InsecureRegistry: *insecureFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "paths", config.ConfigPaths, "format", config.OutputFormat)
	return config, false, nil
}
