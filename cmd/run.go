package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/config"
	"github.com/zjrosen/intermix/internal/dispatch"
	"github.com/zjrosen/intermix/internal/driver"
	"github.com/zjrosen/intermix/internal/flags"
	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/presentation"
	"github.com/zjrosen/intermix/internal/pubsub"
	"github.com/zjrosen/intermix/internal/screen"
	"github.com/zjrosen/intermix/internal/tracing"
)

// ErrGraceExpired is returned when the child outlives the grace period
// after being terminated.
var ErrGraceExpired = errors.New("child did not exit within the grace period")

var runOutput string

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command...]",
	Short: "Run a command on a pseudo-terminal and print its final screen",
	Long: `Run a command on a pseudo-terminal, feed its output through the capability
decoder into the screen model, and print the final screen when it exits.

Without a command the config's "command" setting is used. On timeout or
interrupt the child is sent SIGTERM and polled for the grace period.

Examples:
  intermix run -- ls --color=always
  intermix run --rows 40 --cols 120 --term xterm-256color -- vim -c q
  intermix run --timeout 5s --output json -- top -b -n 1`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Int("rows", 0, "terminal rows")
	f.Int("cols", 0, "terminal columns")
	f.String("term", "", "terminal type (default: $TERM, then dumb)")
	f.Duration("timeout", 0, "terminate the child after this long")
	f.Duration("interval", 0, "pause between polls that found no output")
	f.Duration("grace", 0, "how long to wait for the child after terminating it")
	f.StringVarP(&runOutput, "output", "o", presentation.FormatText, "output format: text, yaml or json")

	_ = viper.BindPFlag("rows", f.Lookup("rows"))
	_ = viper.BindPFlag("cols", f.Lookup("cols"))
	_ = viper.BindPFlag("term", f.Lookup("term"))
	_ = viper.BindPFlag("poll.timeout", f.Lookup("timeout"))
	_ = viper.BindPFlag("poll.interval", f.Lookup("interval"))
	_ = viper.BindPFlag("poll.grace", f.Lookup("grace"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	command := cfg.Command
	if len(args) > 0 {
		command = strings.Join(args, " ")
	}
	if command == "" {
		return fmt.Errorf("no command given: pass one after -- or set \"command\" in the config")
	}

	formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), runOutput)
	if err != nil {
		return err
	}

	logger, cleanup, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runCommand(ctx, cfg, command, logger)
	if summary != nil {
		if ferr := formatter.FormatSummary(*summary); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

// runCommand wires every service for one run, polls the program until it
// exits and returns its summary. The summary is nil only when the program
// never started.
func runCommand(ctx context.Context, c config.Config, command string, logger log.Sink) (*presentation.RunSummaryDTO, error) {
	features := flags.New(c.Flags, logger)
	sink, unhandled := dispatchSink(features, logger)

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.ErrorErr(log.CatCLI, "flushing traces", err)
		}
	}()

	resolver := newResolver(c, features, logger)
	if c.Capabilities.Watch {
		if _, err := resolver.Watch(ctx, c.Capabilities.Dirs...); err != nil {
			logger.Warn(log.CatCLI, "terminfo watch unavailable", "error", err)
		}
	}

	var sc *screen.Screen
	opts := []driver.Option{
		driver.WithResolver(resolver),
		driver.WithSpawner(driver.PTYSpawner{Shell: c.Shell}),
		driver.WithLogger(sink),
		driver.WithTracer(provider.Tracer()),
		driver.WithReadQuantum(c.Poll.ReadQuantum),
		driver.WithTerm(c.Term),
		driver.WithScreenFactory(func(rows, cols int, term string) dispatch.Screen {
			sc = screen.New(rows, cols, term)
			return sc
		}),
	}
	if features.Enabled(flags.FlagTransitionLog) {
		broker := pubsub.NewBroker[driver.Transition]()
		done := logTransitions(ctx, broker, logger)
		defer func() {
			broker.Close()
			<-done
		}()
		opts = append(opts, driver.WithTransitions(broker))
	}

	p := driver.New(c.Rows, c.Cols, command, opts...)
	defer func() {
		if err := p.Close(); err != nil {
			logger.ErrorErr(log.CatCLI, "closing program", err)
		}
	}()

	if err := p.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	pid, _ := p.PID()

	loopErr := pollUntilExit(ctx, p, c.Poll, logger)

	summary := &presentation.RunSummaryDTO{
		Command: command,
		Term:    sc.Term(),
		RunID:   p.RunID(),
		PID:     pid,
		State:   p.State().String(),
		Rows:    c.Rows,
		Cols:    c.Cols,
		Screen:  sc.Lines(),
	}
	if cause := p.ExitCause(); cause != nil {
		summary.ExitCause = cause.Error()
	}
	if unhandled != nil {
		summary.Unhandled = unhandled.Summary()
	}
	return summary, loopErr
}

// newResolver builds the capability resolver from the config, consulting
// the compiled-in descriptions only when the flag allows it.
func newResolver(c config.Config, features *flags.Registry, logger log.Sink) *capdb.Resolver {
	sources := []capdb.Source{capdb.SystemSource{Dirs: c.Capabilities.Dirs}}
	if features.Enabled(flags.FlagBuiltinTerminfo) {
		sources = append(sources, capdb.BuiltinSource{})
	}
	opts := []capdb.ResolverOption{capdb.WithSources(sources...), capdb.WithLogger(logger)}
	if c.Capabilities.CacheTTL > 0 {
		opts = append(opts, capdb.WithCacheTTL(c.Capabilities.CacheTTL))
	} else {
		opts = append(opts, capdb.WithoutCache())
	}
	return capdb.NewResolver(opts...)
}

// dispatchSink returns the sink handed to the driver. With the
// unhandled-summary flag on, dispatch records are also tallied by the
// returned counter; otherwise the counter is nil.
func dispatchSink(features *flags.Registry, logger log.Sink) (log.Sink, *presentation.UnhandledCounter) {
	if !features.Enabled(flags.FlagUnhandledSummary) {
		return logger, nil
	}
	counter := presentation.NewUnhandledCounter()
	return log.Tee(counter, logger), counter
}

// logTransitions logs every published transition until the broker is
// closed. The returned channel is closed once the last one is logged.
func logTransitions(ctx context.Context, broker *pubsub.Broker[driver.Transition], logger log.Sink) <-chan struct{} {
	events := broker.Subscribe(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			t := ev.Payload
			fields := []any{"from", t.From.String(), "to", t.To.String(), "pid", t.PID, "run_id", t.RunID}
			if t.Cause != nil {
				fields = append(fields, "cause", t.Cause.Error())
			}
			logger.Info(log.CatDriver, "state transition", fields...)
		}
	}()
	return done
}

// pollUntilExit polls p until it leaves Running. Output is drained without
// pausing; otherwise the loop sleeps for poll.Interval. Cancellation of ctx
// or poll.Timeout sends SIGTERM once, after which the child has poll.Grace
// to exit.
func pollUntilExit(ctx context.Context, p *driver.Program, poll config.PollConfig, logger log.Sink) error {
	var timeout <-chan time.Time
	if poll.Timeout > 0 {
		t := time.NewTimer(poll.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	var (
		done  = ctx.Done()
		grace <-chan time.Time
	)
	terminate := func(reason string) error {
		done, timeout = nil, nil
		logger.Info(log.CatCLI, "terminating child", "reason", reason, "grace", poll.Grace)
		if err := p.Terminate(unix.SIGTERM); err != nil && !errors.Is(err, driver.ErrProcessNotFound) {
			return err
		}
		grace = time.After(poll.Grace)
		return nil
	}

	for {
		wait := poll.Interval
		switch p.Poll() {
		case driver.OutcomeExited, driver.OutcomeIdle:
			return nil
		case driver.OutcomeRead:
			wait = 0
		}

		select {
		case <-done:
			if err := terminate("interrupted"); err != nil {
				return err
			}
		case <-timeout:
			if err := terminate("timeout"); err != nil {
				return err
			}
		case <-grace:
			logger.Warn(log.CatCLI, "grace period expired", "grace", poll.Grace)
			return ErrGraceExpired
		case <-time.After(wait):
		}
	}
}
