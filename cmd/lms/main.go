// Command lms is a terminal client for the LMS backend: catalog, checkout,
// learning progress, certificates and the admin panels.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lms-client/internal/config"
	"lms-client/internal/observability"

	"golang.org/x/term"
)

var version = "dev"

// readPasswordFunc reads a password without echo from a terminal descriptor.
var readPasswordFunc = term.ReadPassword

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, std streams) error {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(std.stdout)
		return nil
	}
	if args[0] == "version" {
		fmt.Fprintln(std.stdout, version)
		return nil
	}

	cmd, ok := findCommand(args[0])
	if !ok {
		printUsage(std.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, version, std.stderr, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	a, err := newApp(ctx, cfg, logger, std)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close local state")
		}
	}()

	logger.Debug().Str("command", cmd.name).Str("api", a.client.BaseURL()).Msg("running command")
	return cmd.run(ctx, a, args[1:])
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// promptPassword reads a password without echo when stdin is a terminal and
// a single line otherwise.
func (a *app) promptPassword() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, "Password: ")
		raw, err := readPasswordFunc(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	password, err := a.readLine("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
