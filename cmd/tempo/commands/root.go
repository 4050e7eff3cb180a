package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prasrvenkat/tempo"
	"github.com/prasrvenkat/tempo/internal/config"
	"github.com/prasrvenkat/tempo/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagValues holds flags that are not mirrored into viper
type flagValues struct {
	cfgFile        string
	query          string
	skipWeekdays   []string
	skipMonths     []string
	skipMonthStart bool
	skipEndOfYear  bool
	showConfig     bool
}

// registerFlags adds every tempo flag to fs
func registerFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.StringVar(&f.cfgFile, "config", "", "config file (default is $HOME/.tempo.yaml)")
	fs.String("mode", "auto", "grammar to parse: auto, timetype or iterator")
	fs.StringP("output", "o", "text", "output format: text, json or yaml")
	fs.IntP("limit", "n", 100, "maximum moments printed when the iterator has no until clause")
	fs.Int("scan-limit", 0, "maximum candidates examined, skipped ones included, when the iterator can skip forever (0 means 1000 per --limit)")
	fs.String("now", "", "pin the clock to an RFC3339 time")
	fs.String("log-level", "warn", "log level: trace, debug, info, warn, error or off")
	fs.String("log-format", "console", "log format: console or json")
	fs.StringVarP(&f.query, "query", "q", "", "derived query on a moment: "+strings.Join(tempo.QueryNames(), ", "))
	fs.StringSliceVar(&f.skipWeekdays, "skip-weekday", nil, "skip moments on these weekdays (monday, tue, ...)")
	fs.StringSliceVar(&f.skipMonths, "skip-month", nil, "skip moments in these months (january, feb, ...)")
	fs.BoolVar(&f.skipMonthStart, "skip-month-start", false, "skip moments on the 1st of a month")
	fs.BoolVar(&f.skipEndOfYear, "skip-end-of-year", false, "skip moments on December 31st")
	fs.BoolVar(&f.showConfig, "show-config", false, "print the effective configuration and exit")
}

// ErrScanLimit reports a counted iterator whose skips kept it from
// finishing within the scan limit
var ErrScanLimit = errors.New("scan limit reached before the iterator finished")

// viperKeys maps config keys to the flags that override them
var viperKeys = map[string]string{
	"mode":       "mode",
	"output":     "output",
	"limit":      "limit",
	"scan_limit": "scan-limit",
	"now":        "now",
	"log.level":  "log-level",
	"log.format": "log-format",
}

// NewRootCmd builds the tempo command with its own viper instance
func NewRootCmd() *cobra.Command {
	var f flagValues
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "tempo [flags] <expression>...",
		Short: "Evaluate date phrases and list repeating dates",
		Long: `tempo evaluates plain-text date phrases such as "today - 5 days" or
"2023-03-01 + 2weeks", and lists repeating dates such as
"2024-01-01 weekly until 2024-03-01". Arguments are joined with spaces.`,
		Example: `  tempo 2024-01-31 + 1 month
  tempo --query end-of-month today
  tempo --mode iterator 2024-01-01 daily 5 times --skip-weekday sat,sun`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for key, name := range viperKeys {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
					return fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
			cfg, err := config.Load(v, f.cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, &f, args)
		},
	}
	registerFlags(cmd.Flags(), &f)
	return cmd
}

func run(out, errOut io.Writer, cfg *config.Config, f *flagValues, args []string) error {
	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: errOut,
	})
	log := logger.Named("cli")

	if f.showConfig {
		s, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, s)
		return err
	}

	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		return errors.New("missing expression")
	}

	var opts []tempo.Option
	now, pinned, err := cfg.NowTime()
	if err != nil {
		return err
	}
	if pinned {
		opts = append(opts, tempo.WithClock(tempo.FixedClock(now)))
	}
	ev := tempo.NewEvaluatorWith(opts...)

	log.Debug().Str("input", input).Str("mode", cfg.Mode).Msg("parsing")

	var (
		expr *tempo.Expr
		it   *tempo.IteratorExpr
	)
	switch cfg.Mode {
	case "timetype":
		expr, err = tempo.ParseTimeType(input, opts...)
	case "iterator":
		it, err = tempo.ParseIterator(input, opts...)
	default:
		var parsed *tempo.Parsed
		if parsed, err = tempo.Parse(input, opts...); err == nil {
			expr, it = parsed.Expr, parsed.Iterator
		}
	}
	if err != nil {
		return err
	}

	if it != nil {
		log.Debug().Str("expr", it.String()).Msg("parsed iterator")
		for _, w := range it.Warnings() {
			log.Warn().Msg(w)
		}
		return runIterator(out, log, cfg, f, ev, it)
	}
	log.Debug().Str("expr", expr.String()).Msg("parsed time type")
	return runTimeType(out, cfg, f, ev, expr)
}

func runTimeType(out io.Writer, cfg *config.Config, f *flagValues, ev *tempo.Evaluator, expr *tempo.Expr) error {
	v, err := ev.Evaluate(expr)
	if err != nil {
		return err
	}

	res := newResult(v)
	if f.query != "" {
		q, ok := tempo.ParseQuery(f.query)
		if !ok {
			return fmt.Errorf("unknown query %q (want one of %s)", f.query, strings.Join(tempo.QueryNames(), ", "))
		}
		if v.Kind != tempo.ValueKindMoment {
			return fmt.Errorf("query %s needs a moment, got a %s", q, v.Kind)
		}
		t, name := ev.Run(q, v.Moment)
		if q == tempo.QueryDayName {
			res = result{Kind: "dayname", Value: name}
		} else {
			res = newResult(tempo.MomentValue(t))
		}
	}
	return writeResult(out, cfg.Output, res)
}

func runIterator(out io.Writer, log *logger.Logger, cfg *config.Config, f *flagValues, ev *tempo.Evaluator, expr *tempo.IteratorExpr) error {
	spec, err := expr.Build(ev)
	if err != nil {
		return err
	}
	skips, err := skipPredicates(f)
	if err != nil {
		return err
	}
	spec = spec.WithSkip(skips...)

	it, err := spec.Iterator()
	if err != nil {
		return err
	}

	// a Before bound always ends, and a count without skips ends after
	// count candidates, so only the rest need the scan cap
	scanCapped := !spec.Bounded() ||
		(spec.Until.Kind == tempo.UntilKindCount && len(spec.Skip) > 0)
	scanLimit := cfg.EffectiveScanLimit()

	w := newStreamWriter(out, cfg.Output)
	printed, scanned := 0, 0
	for {
		if !spec.Bounded() && printed >= cfg.Limit {
			log.Warn().Int("limit", cfg.Limit).Msg("iterator has no until clause, output capped")
			break
		}
		if scanCapped && scanned >= scanLimit {
			if spec.Bounded() {
				if err := w.close(); err != nil {
					return err
				}
				return fmt.Errorf("%w: examined %d candidates, printed %d of %d",
					ErrScanLimit, scanned, printed, spec.Until.Count)
			}
			log.Warn().Int("scan_limit", scanLimit).Int("printed", printed).Msg("stopped after examining too many candidates")
			break
		}
		t, res := it.Poll()
		if res == tempo.PollDone {
			break
		}
		scanned++
		if res == tempo.PollSkip {
			continue
		}
		if err := w.write(t); err != nil {
			return err
		}
		printed++
	}
	if err := w.close(); err != nil {
		return err
	}
	log.Debug().Int("printed", printed).Int("scanned", scanned).Msg("iterator finished")
	return it.Err()
}

func skipPredicates(f *flagValues) ([]tempo.Predicate, error) {
	var preds []tempo.Predicate
	if len(f.skipWeekdays) > 0 {
		days := make([]time.Weekday, 0, len(f.skipWeekdays))
		for _, name := range f.skipWeekdays {
			d, err := tempo.ParseWeekday(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			days = append(days, d)
		}
		preds = append(preds, tempo.WeekdayIs(days...))
	}
	if len(f.skipMonths) > 0 {
		months := make([]time.Month, 0, len(f.skipMonths))
		for _, name := range f.skipMonths {
			m, err := tempo.ParseMonth(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			months = append(months, m)
		}
		preds = append(preds, tempo.MonthIs(months...))
	}
	if f.skipMonthStart {
		preds = append(preds, tempo.OnMark(tempo.MonthStart))
	}
	if f.skipEndOfYear {
		preds = append(preds, tempo.OnMark(tempo.EndOfYear))
	}
	return preds, nil
}
