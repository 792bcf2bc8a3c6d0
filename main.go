package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gridseq/config"
	"gridseq/debug"
	"gridseq/midi"
	"gridseq/sequencer"
	"gridseq/theme"
	"gridseq/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	// Open the synth output; run silent when no port is configured or
	// the port is missing
	var backend sequencer.Backend = midi.Discard{}
	if cfg.MIDI.PortName != "" {
		b, err := midi.Open(cfg.MIDI.PortName, cfg.MIDI.Channel)
		if err != nil {
			fmt.Printf("midi: %v (running silent)\n", err)
		} else {
			backend = b
		}
	}

	session := sequencer.NewSession(backend)
	session.SetTempo(cfg.Music.Tempo)
	session.SetKeyScale(cfg.Music.Key, cfg.Music.Scale)
	session.SetAllowNonScale(cfg.Music.AllowNonScale)

	th := theme.New(theme.DefaultPalette())

	m := tui.NewModel(session, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Remember the musical context for next time
	cfg.Music.Tempo = session.Tempo()
	cfg.Music.Key, cfg.Music.Scale = session.KeyScale()
	cfg.Music.AllowNonScale = session.AllowNonScale()
	if err := cfg.Save(); err != nil {
		fmt.Printf("config save: %v\n", err)
	}
}
