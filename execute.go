package decree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/reeflective/decree/config"
)

// RunOption configures one top-level run.
type RunOption func(*runOptions)

type runOptions struct {
	name         string
	environ      map[string]string
	cfg          *config.Config
	configFiles  []string
	envPrefix    string
	configPrefix string
	stdout       io.Writer
	stderr       io.Writer
}

// WithProgramName overrides the program name used in usage lines,
// normally derived from os.Args[0].
func WithProgramName(name string) RunOption {
	return func(o *runOptions) { o.name = name }
}

// WithEnviron replaces the process environment for resolution. Useful
// in tests and when embedding commands.
func WithEnviron(environ map[string]string) RunOption {
	return func(o *runOptions) { o.environ = environ }
}

// WithConfig supplies the layered configuration parameters resolve
// against.
func WithConfig(cfg *config.Config) RunOption {
	return func(o *runOptions) { o.cfg = cfg }
}

// WithConfigFiles loads the given files into the configuration before
// running, later files shadowing earlier ones. Files that do not exist
// are skipped silently; unreadable or malformed ones fail the run.
func WithConfigFiles(paths ...string) RunOption {
	return func(o *runOptions) { o.configFiles = append(o.configFiles, paths...) }
}

// WithEnvPrefix derives an environment variable for every parameter
// that declared none: prefix "STORE" makes option "level" resolve from
// STORE_LEVEL.
func WithEnvPrefix(prefix string) RunOption {
	return func(o *runOptions) { o.envPrefix = strings.ToUpper(toSnake(prefix)) }
}

// WithConfigPrefix derives a configuration path for every parameter
// that declared none: prefix "store" makes option "level" resolve from
// "store.level".
func WithConfigPrefix(prefix string) RunOption {
	return func(o *runOptions) { o.configPrefix = strings.ToLower(toKebab(prefix)) }
}

// WithStdout redirects command output.
func WithStdout(w io.Writer) RunOption {
	return func(o *runOptions) { o.stdout = w }
}

// WithStderr redirects diagnostics.
func WithStderr(w io.Writer) RunOption {
	return func(o *runOptions) { o.stderr = w }
}

// Run invokes a command or group on the given arguments (program name
// excluded) and returns its error: nil, a surfaced usage or help error,
// or whatever the run function returned. Main is the variant that
// prints and exits.
func Run(cmd Commander, args []string, opts ...RunOption) error {
	options := runOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	name := options.name
	if name == "" {
		name = programName()
	}

	ctx := newContext(cmd, name, args)
	ctx.envPrefix = options.envPrefix
	ctx.configPrefix = options.configPrefix

	if options.environ != nil {
		ctx.environ = options.environ
	} else {
		ctx.environ = environMap(os.Environ())
	}

	if options.cfg != nil {
		ctx.config = options.cfg
	}

	if options.stdout != nil {
		ctx.stdout = options.stdout
	}

	if options.stderr != nil {
		ctx.stderr = options.stderr
	}

	for _, path := range options.configFiles {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return err
		}

		if err := ctx.config.LoadFile(path); err != nil {
			return err
		}
	}

	err := cmd.invoke(ctx)
	if cerr := ctx.Close(); err == nil {
		err = cerr
	}

	return err
}

// Main runs the command on os.Args, prints surfaced errors and exits.
// Help pages go to stdout and exit 0; usage errors print the usage
// line, the message and a help hint, and exit 2; anything else prints
// as a plain error and exits 1, unless it carries its own exit code.
func Main(cmd Commander, opts ...RunOption) {
	os.Exit(Report(os.Stdout, os.Stderr, Run(cmd, os.Args[1:], opts...)))
}

// Report prints an error the way Main would and returns the exit code,
// separated out so embedders can present errors identically without
// exiting.
func Report(stdout, stderr io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	var help *HelpError
	if errors.As(err, &help) {
		fmt.Fprintln(stdout, strings.TrimRight(help.Help, "\n"))

		return exitOK
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			printError(stderr, exit.Err.Error())
		}

		return exit.Code
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		if usage.Usage != "" {
			fmt.Fprintln(stderr, usage.Usage)
		}

		if usage.Hint != "" {
			fmt.Fprintln(stderr, usage.Hint)
		}

		printError(stderr, usage.Error())

		return exitUsage
	}

	printError(stderr, err.Error())

	return exitFailure
}

func printError(stderr io.Writer, message string) {
	prefix := color.New(color.FgRed, color.Bold).Sprint("Error:")
	fmt.Fprintf(stderr, "%s %s\n", prefix, message)
}

// programName mirrors the usual argv[0] cleanup.
func programName() string {
	if len(os.Args) == 0 {
		return ""
	}

	return filepath.Base(os.Args[0])
}

// environMap converts "KEY=value" pairs into a lookup map.
func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))

	for _, pair := range environ {
		key, value, _ := strings.Cut(pair, "=")
		env[key] = value
	}

	return env
}
