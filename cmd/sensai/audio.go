package main

import (
	"time"

	"github.com/jagtap-suraj/sensai/cmd/sensai/commands"
	"github.com/jagtap-suraj/sensai/pkg/audio/portaudio"
	"github.com/jagtap-suraj/sensai/pkg/interview"
	"github.com/jagtap-suraj/sensai/pkg/playback"
)

func init() {
	commands.Audio = commands.AudioDevices{
		List: func() ([]commands.Device, error) {
			devices, err := portaudio.Devices()
			if err != nil {
				return nil, err
			}
			out := make([]commands.Device, len(devices))
			for i, d := range devices {
				out[i] = commands.Device{
					Index:         d.Index,
					Name:          d.Name,
					Inputs:        d.MaxInputChannels,
					Outputs:       d.MaxOutputChannels,
					SampleRate:    d.DefaultSampleRate,
					DefaultInput:  d.IsDefaultInput,
					DefaultOutput: d.IsDefaultOutput,
				}
			}
			return out, nil
		},
		Microphone: func(device int) interview.Microphone {
			return portaudio.Microphone{Device: device, Buffer: 20 * time.Millisecond}
		},
		Speaker: func(device int) playback.Opener {
			return portaudio.Speaker(device, 20*time.Millisecond)
		},
	}
}
