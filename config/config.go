// Package config reads the settings shared by the beatgrid commands.
//
// Every setting has a default, can be set in a .env file or the environment
// as BEATGRID_<NAME>, and can be overridden on the command line. Variables
// already in the environment win over the .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/ossrs/go-oryx-lib/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

const DefaultEnvFile = ".env"

type Config struct {
	SampleRate   int
	PPQN         int
	BufferFrames int
	Kit          string
	MIDIMap      string
}

// LoadEnv loads the given .env files into the environment, skipping files
// that do not exist.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "load %v", f)
		}
	}
	return nil
}

// Register adds the shared flags to app. The returned Config is filled in
// when app parses its arguments.
func Register(app *kingpin.Application) *Config {
	c := &Config{}
	app.Flag("sample-rate", "Output sample rate in Hz.").
		Default("44100").Envar("BEATGRID_SAMPLE_RATE").IntVar(&c.SampleRate)
	app.Flag("ppqn", "Ticks per quarter note.").
		Default("480").Envar("BEATGRID_PPQN").IntVar(&c.PPQN)
	app.Flag("buffer-frames", "Audio device buffer length in frames, 0 for the driver default.").
		Default("0").Envar("BEATGRID_BUFFER_FRAMES").IntVar(&c.BufferFrames)
	app.Flag("kit", "Kit file listing the samples.").
		Short('k').Default("kit.yml").Envar("BEATGRID_KIT").StringVar(&c.Kit)
	app.Flag("midi-map", "Note number map file; the General MIDI map if empty.").
		Envar("BEATGRID_MIDI_MAP").StringVar(&c.MIDIMap)
	return c
}

// Validate checks the values that can not be checked by the flag parser.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return errors.Errorf("sample rate %v out of range", c.SampleRate)
	}
	if c.PPQN <= 0 || c.PPQN > 0x7fff {
		return errors.Errorf("ppqn %v out of range", c.PPQN)
	}
	if c.BufferFrames < 0 {
		return errors.Errorf("negative buffer length %v", c.BufferFrames)
	}
	return nil
}
