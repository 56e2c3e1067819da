package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/covlink/internal/adapter"
	"github.com/mouse-blink/covlink/internal/domain"
	m "github.com/mouse-blink/covlink/internal/model"
)

var replayRuntimeDumpFlag bool
var replayLogDirFlag string
var replayOutputFlag string
var replayAllFlag bool
var replayLibsFlag bool
var replayFilterFlag string
var replayExcludeFlags []string
var replayNoExcludeFlag bool
var replayFollowChildFlag bool
var replaySkipParameterizedFlag bool
var replayModulesFlag string

// replayCmd represents the replay command.
var replayCmd = newReplayCmd()

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <event-stream>",
		Short: "Replay a recorded engine event stream",
		Long: `Replay drives a coverage session from a recorded instrumentation-engine
event stream (JSONL). In runtime-dump mode each test boundary flushes one
numbered segment file plus a lookup entry; otherwise every function entry
is logged to a flat trace file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := m.Options{
				LogDir:            m.Path(replayLogDirFlag),
				FollowChildren:    replayFollowChildFlag,
				LogAllCalls:       replayAllFlag,
				DumpParameterized: !replaySkipParameterizedFlag,
				IncludeLibs:       replayLibsFlag,
				FilterImage:       replayFilterFlag,
				ExcludeImages:     replayExcludeFlags,
				NoDefaultExcludes: replayNoExcludeFlag,
				ModulesFile:       m.Path(replayModulesFlag),
			}

			// #nosec G304 - args[0] is the operator-supplied stream path
			events, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open event stream: %w", err)
			}

			defer func() { _ = events.Close() }()

			engine := adapter.NewReplayEngine(events, domain.NewImageFilter(opts).Admit)

			if replayRuntimeDumpFlag {
				return runDumpMode(cmd, engine, opts)
			}

			return runTraceMode(engine, replayOutputFlag, opts.LogAllCalls)
		},
	}

	cmd.Flags().BoolVar(&replayRuntimeDumpFlag, "runtime-dump", false, "flush per-test coverage segments instead of a flat trace")
	cmd.Flags().StringVar(&replayLogDirFlag, "logdir", "trace_logs", "directory for per-test segment files (runtime-dump mode)")
	cmd.Flags().StringVarP(&replayOutputFlag, "output", "o", "trace.out", "trace output file (trace mode)")
	cmd.Flags().BoolVar(&replayAllFlag, "all", false, "log every call instead of unique functions only")
	cmd.Flags().BoolVar(&replayLibsFlag, "libs", true, "include library functions, not just the main executable")
	cmd.Flags().StringVar(&replayFilterFlag, "filter", "", "only trace functions from images containing this substring")
	cmd.Flags().StringSliceVar(&replayExcludeFlags, "exclude", nil, "image substrings to exclude (default "+defaultExcludeUsage()+")")
	cmd.Flags().BoolVar(&replayNoExcludeFlag, "no-exclude", false, "disable default exclusions (trace everything)")
	cmd.Flags().BoolVar(&replayFollowChildFlag, "follow-child", false, "tag dumps with the process id so followed children never collide")
	cmd.Flags().BoolVar(&replaySkipParameterizedFlag, "skip-parameterized", false, "suppress per-test dumps for parameterized suite instances")
	cmd.Flags().StringVar(&replayModulesFlag, "modules", "", "write the loaded-image list to this YAML file")

	return cmd
}

func runDumpMode(cmd *cobra.Command, engine adapter.Engine, opts m.Options) error {
	store, err := adapter.NewLocalDumpStore(opts.LogDir, opts.FollowChildren)
	if err != nil {
		return err
	}

	session := domain.NewSession(store, opts)
	lifecycle := domain.NewLifecycleController(session, opts.DumpParameterized, cmd.ErrOrStderr())

	hooks := adapter.Hooks{
		ImageLoaded:        session.ImageLoaded,
		FunctionDiscovered: session.RecordFunction,
		FunctionEntered: func(addr m.Address) {
			session.FunctionEntered(addr)
		},
		MarkerCalled: func(identifier string) {
			if err := session.Flush(identifier); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "covlink: flush %s: %v\n", identifier, err)
			}
		},
		ProgramStarted: lifecycle.ProgramStart,
		SuiteStarted:   lifecycle.SuiteStart,
		TestStarted:    lifecycle.TestStart,
		TestEnded:      lifecycle.TestEnd,
		SuiteEnded:     lifecycle.SuiteEnd,
		ProgramEnded:   lifecycle.ProgramEnd,
	}

	if err := engine.Run(hooks); err != nil {
		return errors.Join(err, session.Close())
	}

	return session.Close()
}

func runTraceMode(engine adapter.Engine, output string, logAll bool) error {
	// #nosec G304 - output is the operator-supplied trace path
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("open trace output %s: %w", output, err)
	}

	tracer := domain.NewTracer(out, logAll)
	tracer.WriteHeader()

	runErr := engine.Run(adapter.Hooks{
		ImageLoaded:        tracer.ImageLoaded,
		FunctionDiscovered: tracer.RecordFunction,
		FunctionEntered:    tracer.FunctionEntered,
	})

	tracer.WriteFooter()

	return errors.Join(runErr, out.Close())
}

// defaultExcludeUsage keeps the flag help in sync with the actual defaults.
func defaultExcludeUsage() string {
	return strings.Join(domain.DefaultExcludedImages, ",")
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
