// Package cli maps command lines onto the session service.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordsrs/internal/clock"
	"github.com/example/wordsrs/internal/config"
	"github.com/example/wordsrs/internal/database"
	"github.com/example/wordsrs/internal/entitlement"
	"github.com/example/wordsrs/internal/excel"
	"github.com/example/wordsrs/internal/logger"
	"github.com/example/wordsrs/internal/quiz"
	"github.com/example/wordsrs/internal/scheduler"
	"github.com/example/wordsrs/internal/session"
	"github.com/example/wordsrs/internal/spaced_repetition"
)

// ErrUsage is returned for unknown commands and bad flags.
var ErrUsage = errors.New("usage error")

const shutdownTimeout = 5 * time.Second

const usage = `usage: wordsrs <command> [flags]

commands:
  import   -file PATH [-sheet NAME] [-start-row N] [-default-level N]
  session  [-levels 1,2] [-goal N] [-choices N]
  review   -item ID [-session ID] [-correct] [-ms N]
  end      -session ID
  reset    -levels 1,2
  stats    [-levels 1,2]
  history  -item ID
  serve
`

// App holds the wired services behind the commands.
type App struct {
	cfg  *config.Config
	repo *database.ItemRepository
	svc  *session.Service
	quiz *quiz.Builder
	log  *logger.Logger
	out  io.Writer
	errw io.Writer
}

// Options override collaborators, mostly for tests.
type Options struct {
	Clock  clock.Clock
	RNG    clock.RNG
	Out    io.Writer
	ErrOut io.Writer
}

// New wires the application on top of an open database.
func New(cfg *config.Config, db *sqlx.DB, log *logger.Logger, opts Options) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	calc, err := spaced_repetition.NewCalculator(spaced_repetition.Config{MaxInterval: cfg.Learning.MaxInterval})
	if err != nil {
		return nil, err
	}
	sm2 := calc.Config()
	log.Debug("scheduler configured",
		"second_interval", sm2.SecondInterval,
		"easy_bonus", sm2.EasyBonus,
		"max_interval", sm2.MaxInterval,
	)
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.RNG == nil {
		opts.RNG = clock.NewLockedRNG(clock.NewRNG(cfg.Learning.RNGSeed))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.ErrOut == nil {
		opts.ErrOut = io.Discard
	}

	repo := database.NewItemRepository(db)
	svc := session.NewService(session.Deps{
		Repo:       repo,
		Oracle:     entitlement.Static(cfg.Learning.Premium),
		Calculator: calc,
		Clock:      opts.Clock,
		RNG:        opts.RNG,
		Logger:     log,
		Jitter:     cfg.Learning.FreeJitter,
	})

	return &App{
		cfg:  cfg,
		repo: repo,
		svc:  svc,
		quiz: quiz.NewBuilder(repo, opts.RNG),
		log:  log,
		out:  opts.Out,
		errw: opts.ErrOut,
	}, nil
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.errw, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		return a.runImport(ctx, rest)
	case "session":
		return a.runSession(ctx, rest)
	case "review":
		return a.runReview(ctx, rest)
	case "end":
		return a.runEnd(ctx, rest)
	case "reset":
		return a.runReset(ctx, rest)
	case "stats":
		return a.runStats(ctx, rest)
	case "history":
		return a.runHistory(ctx, rest)
	case "serve":
		return a.runServe(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.errw, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errw)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// levels parses a -levels value, falling back to the configured levels.
func (a *App) levels(raw string) ([]int, error) {
	if raw == "" {
		return a.cfg.Learning.EligibleLevels, nil
	}
	levels, err := config.ParseLevels(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return levels, nil
}

func (a *App) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) runImport(ctx context.Context, args []string) error {
	fs := a.flags("import")
	ic := excel.DefaultImportConfig()
	fs.StringVar(&ic.FilePath, "file", "", "path to a .xlsx, .csv or .json file")
	fs.StringVar(&ic.SheetName, "sheet", ic.SheetName, "sheet name (xlsx)")
	fs.IntVar(&ic.StartRow, "start-row", ic.StartRow, "first data row, 1-based")
	fs.IntVar(&ic.DefaultLevel, "default-level", ic.DefaultLevel, "level for rows without one")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if ic.FilePath == "" {
		return fmt.Errorf("%w: -file is required", ErrUsage)
	}

	res, err := excel.ImportItems(ctx, ic, a.repo)
	if err != nil {
		return err
	}
	a.log.Info("import finished", "file", ic.FilePath, "created", res.Created, "skipped", res.Skipped)
	return a.print(res)
}

func (a *App) runSession(ctx context.Context, args []string) error {
	fs := a.flags("session")
	rawLevels := fs.String("levels", "", "comma separated levels (default from config)")
	goal := fs.Int("goal", a.cfg.Learning.SessionGoal, "items to review")
	choices := fs.Int("choices", 0, "attach multiple-choice questions with N options (0 = none)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	levels, err := a.levels(*rawLevels)
	if err != nil {
		return err
	}

	plan, err := a.svc.StartSession(ctx, levels, *goal)
	if err != nil {
		return err
	}
	if *choices == 0 || plan.Empty() {
		return a.print(plan)
	}

	questions, err := a.quiz.Build(ctx, plan.Items, levels, *choices)
	if err != nil {
		return err
	}
	return a.print(struct {
		session.Plan
		Questions []quiz.Question `json:"questions"`
	}{plan, questions})
}

func (a *App) runReview(ctx context.Context, args []string) error {
	fs := a.flags("review")
	sessionID := fs.String("session", "", "session id (omit to review outside a session)")
	itemID := fs.Int64("item", 0, "item id")
	correct := fs.Bool("correct", false, "the answer was correct")
	ms := fs.Int64("ms", -1, "response time in milliseconds (-1 = not measured)")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var rt *time.Duration
	if *ms >= 0 {
		d := time.Duration(*ms) * time.Millisecond
		rt = &d
	}

	var (
		rev session.Review
		err error
	)
	if *sessionID != "" {
		rev, err = a.svc.Review(ctx, *sessionID, *itemID, *correct, rt)
	} else {
		rev, err = a.svc.ReviewItem(ctx, *itemID, *correct, rt)
	}
	if err != nil {
		return err
	}
	return a.print(rev)
}

func (a *App) runEnd(ctx context.Context, args []string) error {
	fs := a.flags("end")
	sessionID := fs.String("session", "", "session id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *sessionID == "" {
		return fmt.Errorf("%w: -session is required", ErrUsage)
	}

	sess, err := a.svc.EndSession(ctx, *sessionID)
	if err != nil {
		return err
	}
	return a.print(sess)
}

func (a *App) runReset(ctx context.Context, args []string) error {
	fs := a.flags("reset")
	rawLevels := fs.String("levels", "", "comma separated levels to reset")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *rawLevels == "" {
		return fmt.Errorf("%w: -levels is required", ErrUsage)
	}
	levels, err := a.levels(*rawLevels)
	if err != nil {
		return err
	}

	n, err := a.svc.ResetProgress(ctx, levels)
	if err != nil {
		return err
	}
	return a.print(map[string]interface{}{"levels": levels, "reset": n})
}

func (a *App) runStats(ctx context.Context, args []string) error {
	fs := a.flags("stats")
	rawLevels := fs.String("levels", "", "comma separated levels (default from config)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	levels, err := a.levels(*rawLevels)
	if err != nil {
		return err
	}

	stats, err := a.svc.Stats(ctx, levels)
	if err != nil {
		return err
	}
	return a.print(stats)
}

func (a *App) runHistory(ctx context.Context, args []string) error {
	fs := a.flags("history")
	itemID := fs.Int64("item", 0, "item id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *itemID <= 0 {
		return fmt.Errorf("%w: -item is required", ErrUsage)
	}

	events, err := a.repo.EventsForItem(ctx, *itemID)
	if err != nil {
		return err
	}
	return a.print(events)
}

// runServe runs the maintenance jobs until ctx is cancelled.
func (a *App) runServe(ctx context.Context, args []string) error {
	fs := a.flags("serve")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	s := scheduler.New(a.svc, scheduler.Config{
		SessionTimeout:   a.cfg.Scheduler.SessionTimeout,
		SweepInterval:    a.cfg.Scheduler.SweepInterval,
		SnapshotInterval: a.cfg.Scheduler.SnapshotInterval,
		Levels:           a.cfg.Learning.EligibleLevels,
	}, a.log)
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	a.log.Info("shutting down")

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("scheduler did not stop in time")
	}
}
