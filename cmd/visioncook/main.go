// VisionCook — a camera-assisted cooking companion.
//
// Usage:
//
//	visioncook [-verbose] [-quiet] [-recipe pasta]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/visioncook/internal/broadcast"
	"github.com/hammamikhairi/visioncook/internal/chime"
	"github.com/hammamikhairi/visioncook/internal/conversation"
	"github.com/hammamikhairi/visioncook/internal/display"
	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/frames"
	"github.com/hammamikhairi/visioncook/internal/logger"
	"github.com/hammamikhairi/visioncook/internal/recipe"
	"github.com/hammamikhairi/visioncook/internal/tracker"
	"github.com/hammamikhairi/visioncook/internal/vision"
	"github.com/hammamikhairi/visioncook/internal/watch"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".visioncook-logs/visioncook.log", "file to write logs to (use \"stderr\" to log to console)")
	recipeID := flag.String("recipe", "pasta", "recipe to cook")
	listOnly := flag.Bool("list", false, "list available recipes and exit")
	onnxModel := flag.String("onnx-model", os.Getenv("VISIONCOOK_ONNX_MODEL"), "path to a YOLO ONNX model (empty = scripted demo detector)")
	onnxLib := flag.String("onnx-lib", os.Getenv("VISIONCOOK_ONNX_LIB"), "path to the onnxruntime shared library")
	labelsPath := flag.String("labels", "models/coco.names", "path to the class-name file, one per line")
	confThreshold := flag.Float64("conf", 0.3, "minimum detection confidence")
	nmsThreshold := flag.Float64("nms", 0.4, "IoU threshold for non-maximum suppression")
	detectSecs := flag.Int("detect-secs", 2, "seconds between detection cycles")
	watchBoil := flag.Bool("watch-boil", false, "watch the pan region for boiling water and hint when it bubbles")
	boilThreshold := flag.Int("boil-threshold", vision.DefaultBoilThreshold, "edge-density score above which water counts as boiling")
	noChime := flag.Bool("no-chime", false, "disable audio alerts")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not create log directory %s: %v\n", dir, err)
			}
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs) to
	// the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	recipes := recipe.NewMemorySource(log)

	if *listOnly {
		all, err := recipes.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, r := range all {
			fmt.Printf("%-16s %s (%d steps)\n", r.ID, r.Name, len(r.Steps))
		}
		return
	}

	r, err := recipes.Get(ctx, *recipeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: unknown recipe %q (try -list)\n", *recipeID)
		os.Exit(1)
	}

	bus := broadcast.New(log)
	defer bus.Close()

	machine, err := recipe.NewMachine(r, bus, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	arena := tracker.NewArena(log)
	scene := frames.NewSynthetic(640, 480)

	// Pick the detector: a real ONNX model when configured, otherwise a
	// scripted one that keeps seeing food in the synthetic pan.
	var detector domain.Detector
	demoMode := *onnxModel == ""
	if demoMode {
		detector = vision.NewScript(vision.ScriptEntry{
			Detections: []domain.Detection{
				{Label: "pizza", Confidence: 0.9, Box: scene.Pan()},
			},
		})
		log.Info("no ONNX model configured, using the scripted demo detector")
	} else {
		yolo, err := vision.NewYOLO(vision.YOLOConfig{
			ModelPath:           *onnxModel,
			LabelsPath:          *labelsPath,
			OnnxLib:             *onnxLib,
			ConfidenceThreshold: *confThreshold,
			NMSThreshold:        *nmsThreshold,
		}, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: detector init failed: %v\n", err)
			os.Exit(1)
		}
		defer yolo.Close()
		detector = yolo
	}

	coordOpts := []watch.Option{
		watch.WithDetectInterval(time.Duration(*detectSecs) * time.Second),
	}
	if *watchBoil {
		coordOpts = append(coordOpts,
			watch.WithBoilWatch(scene.Pan().Rect(), *boilThreshold, 30*time.Second))
	}
	coord := watch.New(machine, scene, detector, arena, bus, log, coordOpts...)

	ui := display.NewUI()
	parser := conversation.NewKeywordParser(log)
	notifier := conversation.NewCLINotifier(log, ui.Printf)

	var bell *chime.Chime
	if !*noChime {
		bell, err = chime.New(log)
		if err != nil {
			log.Warn("audio init failed, alerts disabled: %v", err)
			bell = nil
		}
	}

	app := &cliApp{
		machine:  machine,
		recipe:   r,
		arena:    arena,
		coord:    coord,
		parser:   parser,
		notifier: notifier,
		log:      log,
		ui:       ui,
		demoMode: demoMode,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	coord.Start(ctx)
	defer coord.Stop()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		go app.pumpEvents(ctx, bus, bell)
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	coord.Stop()
	if bell != nil {
		bell.Wait()
	}
}

type cliApp struct {
	machine  *recipe.Machine
	recipe   *domain.Recipe
	arena    *tracker.Arena
	coord    *watch.Coordinator
	parser   domain.CommandParser
	notifier *conversation.CLINotifier
	log      *logger.Logger
	ui       *display.UI
	demoMode bool
}

// pumpEvents forwards every broadcast event into the status bar, the
// chime, and the scrollback. Runs until the context is cancelled.
func (a *cliApp) pumpEvents(ctx context.Context, bus *broadcast.Broadcaster, bell *chime.Chime) {
	events, err := bus.Subscribe("console")
	if err != nil {
		a.log.Error("subscribing console: %v", err)
		return
	}
	defer bus.Unsubscribe("console")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.ui.Apply(ev)
			if bell != nil {
				bell.Apply(ev)
			}
			a.printEvent(ev)
		}
	}
}

// printEvent writes the scrollback line for notable events. Ticks stay
// silent — the status bar already counts down.
func (a *cliApp) printEvent(ev domain.Event) {
	switch ev.Kind {
	case domain.EventTimerTick:
		if ev.Recipe != nil && ev.Recipe.RemainingSeconds == 0 {
			a.notifier.NotifyUrgent("Time's up for this step — type 'next' when you're ready.")
		}
	case domain.EventStepAdvanced:
		if ev.Recipe != nil {
			a.showStep(*ev.Recipe)
		}
	case domain.EventStateChange:
		if ev.Item != nil && ev.Item.NewState == domain.ItemCooked {
			item, err := a.arena.Get(ev.Item.ItemID)
			label := "item"
			if err == nil {
				label = item.Label
			}
			a.notifier.NotifyUrgent(fmt.Sprintf("The %s looks cooked!", label))
		}
	case domain.EventStepHint:
		if ev.Hint != "" {
			a.notifier.Notify(ev.Hint)
		}
	}
}

func (a *cliApp) run(ctx context.Context) {
	a.ui.PrintStep(fmt.Sprintf("Cooking: %s", a.recipe.Name))
	a.ui.PrintHint(a.recipe.Description)
	if a.demoMode {
		a.ui.PrintHint("(demo mode: watching a generated kitchen scene)")
	}
	a.ui.Println("")
	a.showStep(a.machine.Snapshot())
	a.ui.PrintHint("The timer starts paused — type 'go' when the step is underway.")

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd := a.parser.Parse(input)
		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)

		switch cmd.Type {
		case domain.CommandAdvance:
			if !a.machine.Advance() {
				a.ui.PrintUrgent("That was the last step — enjoy your meal! Type 'quit' to exit.")
			}
		case domain.CommandPause:
			a.machine.Pause()
			a.ui.PrintHint("Timer paused.")
		case domain.CommandResume:
			a.machine.Resume()
			a.ui.PrintHint("Timer running.")
		case domain.CommandRepeat:
			// Re-publishes the current snapshot; the event pump prints
			// the step and every other subscriber resyncs too.
			a.machine.RepeatCurrent()
		case domain.CommandStatus:
			a.status()
		case domain.CommandHelp:
			a.showHelp()
		case domain.CommandQuit:
			return
		case domain.CommandUnknown:
			a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q) — type 'help' for commands.", cmd.Payload))
		}
	}
}

// showStep prints the step header and instruction for a snapshot.
func (a *cliApp) showStep(s domain.Snapshot) {
	a.ui.PrintStep(fmt.Sprintf("Step %d/%d (~%s)", s.StepIndex+1, s.StepCount, formatSeconds(s.Step.DurationSeconds)))
	a.ui.PrintInstruction(s.Step.Description)
}

func (a *cliApp) status() {
	s := a.machine.Snapshot()

	a.ui.PrintStep(fmt.Sprintf("Recipe:  %s", a.recipe.Name))
	a.ui.PrintInstruction(fmt.Sprintf("Step:    %d/%d — %s", s.StepIndex+1, s.StepCount, s.Step.Description))
	state := "paused"
	if s.Running {
		state = "running"
	}
	a.ui.PrintInstruction(fmt.Sprintf("Timer:   %s (%s)", formatSeconds(s.RemainingSeconds), state))

	items := a.arena.Items()
	if len(items) == 0 {
		a.ui.PrintHint("Tracked: nothing on the stove yet")
	}
	for _, item := range items {
		a.ui.PrintInstruction(fmt.Sprintf("Tracked: item %d (%s) — %s", item.ID, item.Label, item.State))
	}

	if !a.coord.DetectionAlive() {
		a.ui.PrintUrgent("Vision is down — timers and commands still work.")
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	a.ui.PrintInstruction("  next / done      Move to the next step (timer starts paused)")
	a.ui.PrintInstruction("  go / resume      Start or resume the step countdown")
	a.ui.PrintInstruction("  pause / brb      Pause the countdown")
	a.ui.PrintInstruction("  repeat / again   Show the current step again")
	a.ui.PrintInstruction("  status / where   Show step, timer, and tracked items")
	a.ui.PrintInstruction("  help             Show this message")
	a.ui.PrintInstruction("  quit / exit      Exit")
}

func formatSeconds(total int) string {
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	m := total / 60
	s := total % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%ds", m, s)
}
