package commands

import (
	"errors"
	"fmt"

	"github.com/jagtap-suraj/sensai/pkg/interview"
	"github.com/jagtap-suraj/sensai/pkg/playback"
)

// AudioDevices is the sound hardware used by live interviews. A negative
// device index selects the system default.
type AudioDevices struct {
	List       func() ([]Device, error)
	Microphone func(device int) interview.Microphone
	Speaker    func(device int) playback.Opener
}

// Audio is wired by main; it stays empty in builds without audio support.
var Audio AudioDevices

var errNoAudio = errors.New("audio devices are not available in this build")

// Device describes one audio device.
type Device struct {
	Index         int     `json:"index"          yaml:"index"`
	Name          string  `json:"name"           yaml:"name"`
	Inputs        int     `json:"inputs"         yaml:"inputs"`
	Outputs       int     `json:"outputs"        yaml:"outputs"`
	SampleRate    float64 `json:"sample_rate"    yaml:"sample_rate"`
	DefaultInput  bool    `json:"default_input"  yaml:"default_input"`
	DefaultOutput bool    `json:"default_output" yaml:"default_output"`
}

type deviceTable []Device

func (t deviceTable) Header() []string {
	return []string{"INDEX", "NAME", "IN", "OUT", "RATE", "DEFAULT"}
}

func (t deviceTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, d := range t {
		def := ""
		switch {
		case d.DefaultInput && d.DefaultOutput:
			def = "input,output"
		case d.DefaultInput:
			def = "input"
		case d.DefaultOutput:
			def = "output"
		}
		rows[i] = []string{
			fmt.Sprint(d.Index), d.Name, fmt.Sprint(d.Inputs), fmt.Sprint(d.Outputs),
			fmt.Sprintf("%.0f", d.SampleRate), def,
		}
	}
	return rows
}
