package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/AndrewHarrisSPU/logtree"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"
)

type (
	api   = logtree.Levels
	scope = logtree.Scope[logtree.Levels]
)

func main() {
	app := NewApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func NewApp() *cli.App {
	return &cli.App{
		Name:  "logtree-demo",
		Usage: "render scoped log trees to the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "meta",
				Usage: "annotate entries with call sites",
			},
			&cli.BoolFlag{
				Name:  "no-time",
				Usage: "omit timestamps",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable ANSI colors",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "reprint the whole tree when done",
			},
		},
		Commands: []*cli.Command{
			scopesCommand(),
			timersCommand(),
			promiseCommand(),
			reflowCommand(),
			slogCommand(),
		},
	}
}

// newLogger builds a logger from global flags, rendering to the app's writer.
func newLogger(c *cli.Context) (*logtree.Logger[api], error) {
	out := logtree.NewOutput().Writer(c.App.Writer)
	if c.Bool("no-color") {
		out.Colors(false)
	}

	opts := []logtree.Option{
		logtree.Using.Output(out.Renderer()),
		logtree.Using.Meta(c.Bool("meta")),
		logtree.Using.Time(!c.Bool("no-time")),
	}

	if path := c.String("config"); path != "" {
		cfg, err := logtree.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cfg.Options()...)
	}

	return logtree.New(logtree.LevelAPI, opts...)
}

func finish(c *cli.Context, log *logtree.Logger[api]) {
	// let deferred reflows land
	time.Sleep(20 * time.Millisecond)

	if c.Bool("print") {
		fmt.Fprintln(c.App.Writer, "--- reprint ---")
		log.Print()
	}
}

func scopesCommand() *cli.Command {
	return &cli.Command{
		Name:  "scopes",
		Usage: "nested named scopes",
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}

			log.API().Info("Hello, Roswell")
			log.Scope("landing", func(*scope) {
				log.API().Warn("🛸 spotted")
				log.Scope("investigation", func(s *scope) {
					s.API().Verbose("lights", 3)
					log.API().Error(errors.New("signal lost"))
				})
				log.API().Success("contact")
			})
			log.API().Log("done", map[string]int{"sightings": 1})

			finish(c, log)
			return nil
		},
	}
}

func timersCommand() *cli.Command {
	return &cli.Command{
		Name:  "timers",
		Usage: "timeouts, intervals and cancellation inside scopes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "every",
				Value: 50 * time.Millisecond,
				Usage: "interval period",
			},
			&cli.IntFlag{
				Name:  "steps",
				Value: 3,
				Usage: "interval steps before clearing",
			},
		},
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}
			tasks := log.Tasks()

			var wg sync.WaitGroup
			wg.Add(3)

			log.Scope("polling", func(*scope) {
				tasks.SetTimeout(func() {
					defer wg.Done()
					log.API().Info("timeout fired")
				}, 10*time.Millisecond)

				var id logtree.TaskID
				steps := c.Int("steps")
				id = tasks.SetInterval(func(step int) {
					log.API().Log("step", step)
					if step+1 >= steps {
						tasks.Clear(id)
						wg.Done()
					}
				}, c.Duration("every"))

				tasks.SetImmediate(func() {
					defer wg.Done()
					panic("immediate failure")
				})

				never := tasks.SetTimeout(func() {}, time.Hour)
				tasks.Clear(never)
			})

			wg.Wait()
			finish(c, log)
			return nil
		},
	}
}

func promiseCommand() *cli.Command {
	return &cli.Command{
		Name:  "promise",
		Usage: "a promise chain inside a scope",
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}

			var p *logtree.Promise[int]
			log.Scope("fetch", func(*scope) {
				p = logtree.NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
					log.API().Verbose("requesting")
					go func() {
						time.Sleep(10 * time.Millisecond)
						resolve(42)
					}()
				})
			})

			v, err := p.
				Then(func(v int) (int, error) {
					log.API().Info("got", v)
					return v * 2, nil
				}, nil).
				Then(func(v int) (int, error) {
					return 0, fmt.Errorf("too large: %d", v)
				}, nil).
				Catch(func(err error) (int, error) {
					log.API().Warn("recovered", err)
					return -1, nil
				}).
				Await(context.Background())

			log.API().Log("result", v, err)
			finish(c, log)
			return nil
		},
	}
}

func reflowCommand() *cli.Command {
	return &cli.Command{
		Name:  "reflow",
		Usage: "late entries reopen their scope",
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}

			upload := log.Scope("upload", nil)
			upload.API().Info("started")
			log.API().Info("meanwhile, at the root")

			upload.API().Info("late: 50%")
			upload.API().Info("late: 100%")

			finish(c, log)
			return nil
		},
	}
}

func slogCommand() *cli.Command {
	return &cli.Command{
		Name:  "slog",
		Usage: "slog records routed into scopes through contexts",
		Action: func(c *cli.Context) error {
			log, err := newLogger(c)
			if err != nil {
				return err
			}

			sl := log.Slog(slog.LevelDebug).With("service", "radar")
			worker := log.Scope("worker", nil)
			ctx := logtree.NewContext(context.Background(), worker)

			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					sl.InfoContext(ctx, "sweep", "sector", i)
				}(i)
			}
			wg.Wait()

			sl.Warn("outside any scope")

			finish(c, log)
			return nil
		},
	}
}
