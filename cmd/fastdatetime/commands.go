package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
	"github.com/hrygo/fastdatetime/server"
)

// emitter prints one outcome per input and counts failures.
type emitter struct {
	out, errOut io.Writer
	json        bool
	failed      int
}

func (a *app) newEmitter(cmd *cobra.Command) *emitter {
	return &emitter{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), json: a.v.GetBool("json")}
}

func (e *emitter) emit(input string, text string, r dateparse.Result, err error) error {
	if err != nil {
		e.failed++
	}
	if e.json {
		return json.NewEncoder(e.out).Encode(dateparse.BatchItem{Input: input, Result: r, Err: err})
	}
	if err != nil {
		_, werr := fmt.Fprintf(e.errOut, "%s: %v\n", input, err)
		return werr
	}
	_, werr := fmt.Fprintln(e.out, text)
	return werr
}

func (e *emitter) done(total int) error {
	if e.failed > 0 {
		return errors.Errorf("%d of %d inputs failed", e.failed, total)
	}
	return nil
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <input>...",
		Short: "Parse free-form date/time text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, svc, err := a.setup()
			if err != nil {
				return err
			}
			e := a.newEmitter(cmd)
			for _, input := range args {
				r, err := svc.Parse(input, p.DayFirst, p.YearFirst)
				if err := e.emit(input, r.String(), r, err); err != nil {
					return err
				}
			}
			return e.done(len(args))
		},
	}
}

// strptimeFunc maps a --mode value to the matching Service method.
func strptimeFunc(svc *dateparse.Service, mode string) (func(input, format string) (dateparse.Result, error), error) {
	switch mode {
	case "", "strict":
		return svc.Strptime, nil
	case "loose":
		return svc.StrptimeLoose, nil
	case "fallback":
		return svc.StrptimeFallback, nil
	default:
		return nil, errors.Errorf("unknown mode %q (valid: strict, loose, fallback)", mode)
	}
}

func (a *app) strptimeCmd() *cobra.Command {
	var format, mode string
	cmd := &cobra.Command{
		Use:   "strptime <input>...",
		Short: "Parse date/time text with a strftime format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, svc, err := a.setup()
			if err != nil {
				return err
			}
			fn, err := strptimeFunc(svc, mode)
			if err != nil {
				return err
			}
			e := a.newEmitter(cmd)
			for _, input := range args {
				r, err := fn(input, format)
				if err := e.emit(input, r.String(), r, err); err != nil {
					return err
				}
			}
			return e.done(len(args))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "strftime format, e.g. %Y-%m-%d %H:%M:%S%z")
	cmd.Flags().StringVarP(&mode, "mode", "m", "strict", "matching mode: strict, loose, fallback")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

func (a *app) formatCmd() *cobra.Command {
	var format, mode, output string
	cmd := &cobra.Command{
		Use:   "format <input>...",
		Short: "Parse inputs and print them with a strftime output format",
		Long: "Parse each input (free-form, or with --format) and print it rendered with --output.\n" +
			"Zoned results are rendered in UTC.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, svc, err := a.setup()
			if err != nil {
				return err
			}
			parse := func(input string) (dateparse.Result, error) {
				return svc.Parse(input, p.DayFirst, p.YearFirst)
			}
			if format != "" {
				fn, err := strptimeFunc(svc, mode)
				if err != nil {
					return err
				}
				parse = func(input string) (dateparse.Result, error) {
					return fn(input, format)
				}
			}

			e := a.newEmitter(cmd)
			for _, input := range args {
				r, err := parse(input)
				var text string
				if err == nil {
					text = svc.Format(r, output)
				}
				if err := e.emit(input, text, r, err); err != nil {
					return err
				}
			}
			return e.done(len(args))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "%Y-%m-%dT%H:%M:%S", "strftime output format")
	cmd.Flags().StringVarP(&format, "format", "f", "", "strftime input format; free-form parsing when empty")
	cmd.Flags().StringVarP(&mode, "mode", "m", "strict", "input matching mode when --format is set")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var req dateparse.BatchRequest
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse one input per line from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, svc, err := a.setup()
			if err != nil {
				return err
			}
			req.DayFirst, req.YearFirst = p.DayFirst, p.YearFirst
			req.Inputs = req.Inputs[:0]

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					req.Inputs = append(req.Inputs, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "failed to read input")
			}

			items, err := svc.ParseBatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			e := a.newEmitter(cmd)
			for _, item := range items {
				if err := e.emit(item.Input, item.Result.String(), item.Result, item.Err); err != nil {
					return err
				}
			}
			return e.done(len(items))
		},
	}
	cmd.Flags().StringVar(&req.Op, "op", dateparse.OpParse, "operation: parse, strptime, strptime_loose, strptime_fallback")
	cmd.Flags().StringVarP(&req.Format, "format", "f", "", "strftime format for the strptime operations")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, logger, svc, err := a.setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.NewServer(p, svc, observability.GlobalMetrics(), logger)
			if err := s.Start(ctx); err != nil {
				return errors.Wrap(err, "failed to start server")
			}
			<-ctx.Done()
			s.Shutdown(context.Background())
			return nil
		},
	}
	cmd.Flags().String("addr", a.base.Addr, "address of server")
	cmd.Flags().Int("port", a.base.Port, "port of server")
	for _, key := range []string{"addr", "port"} {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}
	return cmd
}
