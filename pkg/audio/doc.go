// Package audio groups the audio building blocks of the interview pipeline:
//
//   - pcm: sample formats and float32/int16 conversion
//   - resampler: sample rate conversion for captured audio
//   - spectrum: frequency analysis for the level visualizer
//   - portaudio: microphone and speaker devices
package audio
