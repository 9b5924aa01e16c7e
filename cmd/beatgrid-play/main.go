package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/config"
	"github.com/beatgrid/beatgrid/mixer"
	"github.com/beatgrid/beatgrid/oto"
	"github.com/beatgrid/beatgrid/samples"
	"github.com/beatgrid/beatgrid/sequencer"
	"github.com/beatgrid/beatgrid/version"
	"github.com/eiannone/keyboard"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"golang.org/x/term"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	ctx := logger.WithContext(context.Background())
	if err := doMain(ctx, os.Args[1:]); err != nil {
		logger.Ef(ctx, "run err %+v", err)
		os.Exit(1)
	}
}

func doMain(ctx context.Context, args []string) error {
	if err := config.LoadEnv(config.DefaultEnvFile); err != nil {
		return err
	}
	app := kingpin.New("beatgrid-play", "Play a drum pattern in real time.")
	app.Version(version.VersionOrHash)
	cfg := config.Register(app)
	projectFile := app.Arg("project", "Project file (.json or .yml); an empty pattern with one track per sample if omitted.").String()
	autoplay := app.Flag("play", "Start playing immediately.").Short('p').Bool()
	if _, err := app.Parse(args); err != nil {
		return errors.Wrapf(err, "parse arguments")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	table, err := samples.ReadKit(cfg.Kit)
	if err != nil {
		return err
	}
	project := beatgrid.NewProject()
	if *projectFile != "" {
		if project, err = beatgrid.ReadProjectFile(*projectFile); err != nil {
			return err
		}
	} else {
		for _, s := range table.Refs() {
			project.AddTrack(s)
		}
	}
	logger.Tf(ctx, "project: %v tracks, %v notes, tempo %v, kit %v with %v samples",
		len(project.Tracks), len(project.Notes), project.Tempo, cfg.Kit, len(table.All()))
	store := beatgrid.NewProjectStore(project)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	go func() {
		for s := range sc {
			logger.Tf(ctx, "Got signal %v", s)
			cancel()
		}
	}()

	// playback starts right away; samples still decoding play as silence
	go func() {
		if err := samples.Load(ctx, table, cfg.SampleRate); err != nil {
			logger.Wf(ctx, "some samples failed to load, err %+v", err)
		}
		logger.Tf(ctx, "%v of %v samples loaded", table.Loaded(), len(table.All()))
	}()

	audioContext, err := oto.NewContext(cfg.SampleRate, cfg.BufferFrames)
	if err != nil {
		return err
	}
	defer audioContext.Close()
	m := mixer.New(cfg.SampleRate)
	output := audioContext.Play(m)
	defer output.Close()

	broker := sequencer.NewBroker()
	player := sequencer.NewPlayer(broker, m, m, store, table, cfg.SampleRate, cfg.PPQN)
	go player.Run(ctx)
	go sequencer.RunTimer(ctx, broker)
	defer broker.Close(3 * time.Second)
	store.OnChange(func(beatgrid.Project) {
		sequencer.TrySend(broker.ToPlayer, any(sequencer.ReconfigureMsg{}))
	})

	t := &transport{store: store, toPlay: broker.ToPlayer}
	if *autoplay {
		t.handle(keyboard.KeyEvent{Key: keyboard.KeySpace})
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if !*autoplay {
			t.handle(keyboard.KeyEvent{Key: keyboard.KeySpace})
		}
		logger.Tf(ctx, "stdin is not a terminal, playing until interrupted")
		<-ctx.Done()
		return nil
	}
	return runTerminal(ctx, t, broker, cfg.PPQN)
}

func runTerminal(ctx context.Context, t *transport, broker *sequencer.Broker, ppqn int) error {
	keys, err := keyboard.GetKeys(16)
	if err != nil {
		return errors.Wrapf(err, "open keyboard")
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			logger.Wf(ctx, "close keyboard, err %v", err)
		}
	}()
	fmt.Println(help)
	refresh := time.NewTicker(100 * time.Millisecond)
	defer refresh.Stop()
	var last sequencer.MsgToModel
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case ev := <-keys:
			if ev.Err != nil {
				return errors.Wrapf(ev.Err, "read key")
			}
			if t.handle(ev) {
				fmt.Println()
				return nil
			}
		case last = <-broker.ToModel:
		case <-refresh.C:
			fmt.Printf("\r%-72s", status(t.store.Project(), last, ppqn))
		}
	}
}
