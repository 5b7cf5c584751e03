// Command tapirplay builds a small demo unit-generator graph and plays it
// through a realtime audio device, or renders it to a WAV file when
// --duration is set.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/tapirlisp/tapirgo/pkg/sound"
	"github.com/tapirlisp/tapirgo/pkg/transport"
	"github.com/tapirlisp/tapirgo/pkg/ugen"
	"github.com/tapirlisp/tapirgo/pkg/ugen/fixture"
)

func main() {
	sampleRate := pflag.UintP("sample-rate", "r", 48000, "Audio sample rate in Hz.")
	bpm := pflag.Float64P("bpm", "t", 120.0, "Tempo in beats per minute.")
	measureBeat := pflag.UintP("measure-beat", "b", 4, "Beats per bar.")
	measureNote := pflag.UintP("measure-note", "n", 4, "Note value of one beat.")
	channels := pflag.IntP("channels", "c", 3, "Number of detuned voices in the demo graph.")
	duration := pflag.Float64P("duration", "d", 0, "Seconds of audio to render to --output instead of playing live. 0 plays live.")
	output := pflag.StringP("output", "o", "out.wav", "WAV file path used when --duration is set.")
	dump := pflag.Bool("dump", false, "Print the demo graph as tapirlisp source and exit.")
	pflag.Parse()

	logger := log.Default()

	if *channels < 1 {
		*channels = 1
	}

	tr := transport.New(uint32(*sampleRate), *bpm, transport.Measure{Beat: uint32(*measureBeat), Note: uint32(*measureNote)})
	root := buildDemoGraph(*channels)
	sys := sound.New(root, tr, logger)

	if *dump {
		fmt.Print(sys.Dump())
		return
	}

	if *duration > 0 {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("failed to create output file", "path", *output, "err", err)
			os.Exit(1)
		}
		defer f.Close()

		backend := sound.NewWAVBackend(f, uint32(*sampleRate), *duration)
		logger.Info("rendering to file", "path", *output, "duration", *duration)
		if err := sys.Run(backend); err != nil {
			logger.Error("render failed", "err", err)
			os.Exit(1)
		}
		return
	}

	backend, err := sound.NewRealtimeBackend(uint32(*sampleRate))
	if err != nil {
		logger.Error("failed to open audio device", "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := sys.Run(backend); err != nil {
		logger.Error("playback failed", "err", err)
		os.Exit(1)
	}

	logger.Info("playing live, press Ctrl+C to stop", "sample_rate", *sampleRate)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("stopping")
}

// buildDemoGraph builds n detuned sequenced voices mixed down together, a
// stand-in for the tapirlisp programs a real session would load from text.
func buildDemoGraph(n int) ugen.Aug {
	voices := make([]ugen.Aug, 0, n)
	for i := 0; i < n; i++ {
		detune := 1.0 + 0.003*float64(i)
		voice := fixture.SimpleVoice(220.0*detune, 0.01, 0.05, 0.4, 0.3)
		pattern := ugen.NewPattern(fixture.ClonePattern())
		seq := ugen.NewSeq(pattern, voice)
		filtered := ugen.NewLPFilter(ugen.Val(2000.0), ugen.Val(0.707), seq)
		voices = append(voices, filtered)
	}
	return ugen.NewMixer(voices)
}
