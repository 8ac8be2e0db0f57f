package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pdfsummarizer/core"
	"pdfsummarizer/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := watchSignals(cancel, os.Stderr)
	defer signals.stop()

	var logger *logging.Logger
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()

	load := func() (*app, error) {
		cfg, err := core.LoadConfig()
		if err != nil {
			return nil, err
		}
		logger, err = newLogger(cfg)
		if err != nil {
			return nil, err
		}
		return newApp(cfg, logger), nil
	}

	root := newRootCmd(load)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return exitCode(err, signals.caught(), logger)
}

// signalWatcher cancels the run on the first SIGINT or SIGTERM and exits
// immediately on the second.
type signalWatcher struct {
	ch  chan os.Signal
	mu  sync.Mutex
	sig os.Signal
}

func watchSignals(cancel context.CancelFunc, out io.Writer) *signalWatcher {
	w := &signalWatcher{ch: make(chan os.Signal, 2)}
	signal.Notify(w.ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-w.ch
		if !ok {
			return
		}
		w.mu.Lock()
		w.sig = sig
		w.mu.Unlock()

		fmt.Fprintln(out, "\nStopping; press Ctrl+C again to quit now.")
		cancel()

		if sig, ok := <-w.ch; ok {
			os.Exit(signalExitCode(sig))
		}
	}()
	return w
}

// caught returns the first signal received, or nil.
func (w *signalWatcher) caught() os.Signal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sig
}

func (w *signalWatcher) stop() {
	signal.Stop(w.ch)
	close(w.ch)
}

func signalExitCode(sig os.Signal) int {
	if sig == syscall.SIGTERM {
		return core.ExitCodeSIGTERM
	}
	return core.ExitCodeSIGINT
}

func newLogger(cfg *core.Config) (*logging.Logger, error) {
	opts := logging.Options{Development: cfg.DevMode, FilePath: cfg.LogFile}
	if cfg.LogLevel != "" {
		level, ok := logging.ParseLogLevelString(cfg.LogLevel, zapcore.WarnLevel)
		if !ok {
			return nil, core.ErrInvalidValue("LOG_LEVEL", cfg.LogLevel, "must be debug, info, warn or error")
		}
		opts.Level = &level
	} else if !cfg.DevMode {
		// Keep the terminal for progress output unless asked otherwise.
		level := zapcore.WarnLevel
		opts.Level = &level
	}
	return logging.NewLogger(opts)
}

func newApp(cfg *core.Config, logger *logging.Logger) *app {
	settings, err := core.LoadSettings(cfg.SettingsFile)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", zap.String("path", cfg.SettingsFile), zap.Error(err))
	}
	return &app{cfg: cfg, logger: logger, settings: settings, out: os.Stdout, errOut: os.Stderr}
}

// exitCode maps a command error to a process exit code and reports it. sig is
// the signal that interrupted the run, if any.
func exitCode(err error, sig os.Signal, logger *logging.Logger) int {
	if err == nil {
		return core.ExitCodeSuccess
	}
	if errors.Is(err, context.Canceled) {
		code := signalExitCode(sig)
		fmt.Fprintln(os.Stderr, "Interrupted.")
		if logger != nil {
			logger.Warn("run interrupted", zap.String("exit", core.ExitCodeName(code)))
		}
		return code
	}

	if cfgErr, ok := core.IsConfigError(err); ok {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cfgErr.Message)
		if cfgErr.Action != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", cfgErr.Action)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if logger != nil {
		logger.Error("command failed", zap.String("code", core.GetErrorCode(err)), zap.Error(err))
	}
	return core.ExitCodeError
}
