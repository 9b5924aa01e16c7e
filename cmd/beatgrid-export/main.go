package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/config"
	"github.com/beatgrid/beatgrid/midifile"
	"github.com/beatgrid/beatgrid/mixer"
	"github.com/beatgrid/beatgrid/samples"
	"github.com/beatgrid/beatgrid/version"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
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
	app := kingpin.New("beatgrid-export", "Export a drum pattern as a MIDI file, and optionally as audio.")
	app.Version(version.VersionOrHash)
	cfg := config.Register(app)
	projectFile := app.Arg("project", "Project file (.json or .yml).").Required().ExistingFile()
	output := app.Flag("output", "MIDI file to write; defaults to the project name with a .mid extension.").
		Short('o').Envar("BEATGRID_MIDI_OUTPUT").String()
	wavOutput := app.Flag("wav", "Also render the pattern to this WAV file.").
		Short('w').Envar("BEATGRID_WAV_OUTPUT").String()
	loops := app.Flag("loops", "Times the pattern is repeated in the WAV file.").
		Default("1").Envar("BEATGRID_LOOPS").Int()
	summary := app.Flag("summary", "Print the note number of every track.").Short('s').Bool()
	if _, err := app.Parse(args); err != nil {
		return errors.Wrapf(err, "parse arguments")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	project, err := beatgrid.ReadProjectFile(*projectFile)
	if err != nil {
		return err
	}
	table, err := samples.ReadKit(cfg.Kit)
	if err != nil {
		return err
	}
	numbers := midifile.GeneralMIDI()
	if cfg.MIDIMap != "" {
		if numbers, err = midifile.ReadNoteNumberMap(cfg.MIDIMap); err != nil {
			return err
		}
	}

	if *output == "" {
		*output = strings.TrimSuffix(*projectFile, filepath.Ext(*projectFile)) + ".mid"
	}
	e, err := exportMIDI(*output, project, table.Refs(), numbers, cfg.PPQN)
	if err != nil {
		return err
	}
	logger.Tf(ctx, "wrote %v: %v events, %v tracks", *output, len(e.Events), e.Mapping.Len())
	if *summary {
		if err := midifile.WriteSummary(os.Stdout, e); err != nil {
			return err
		}
	}

	if *wavOutput != "" {
		if err := samples.Load(ctx, table, cfg.SampleRate); err != nil {
			logger.Wf(ctx, "bouncing with missing samples, err %+v", err)
		}
		if err := bounce(*wavOutput, project, table, cfg.SampleRate, cfg.PPQN, *loops); err != nil {
			return err
		}
		logger.Tf(ctx, "wrote %v: %v loops at %v Hz", *wavOutput, *loops, cfg.SampleRate)
	}
	return nil
}

// exportMIDI writes to a temporary file first so that a failed export never
// leaves a truncated file behind.
func exportMIDI(path string, p beatgrid.Project, refs []beatgrid.SampleRef, numbers midifile.NoteNumberMap, ppqn int) (midifile.Export, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".beatgrid-*.mid")
	if err != nil {
		return midifile.Export{}, errors.Wrapf(err, "create temporary file")
	}
	defer os.Remove(f.Name())
	e, err := midifile.ExportProject(f, p, refs, numbers, ppqn)
	if err != nil {
		f.Close()
		return midifile.Export{}, err
	}
	if err := f.Close(); err != nil {
		return midifile.Export{}, errors.Wrapf(err, "close %v", f.Name())
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return midifile.Export{}, errors.Wrapf(err, "rename to %v", path)
	}
	return e, nil
}

func bounce(path string, p beatgrid.Project, table *samples.Table, sampleRate, ppqn, loops int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %v", path)
	}
	if err := mixer.Bounce(f, p, table, sampleRate, ppqn, loops); err != nil {
		f.Close()
		return errors.Wrapf(err, "bounce %v", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %v", path)
	}
	return nil
}
