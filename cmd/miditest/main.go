// miditest verifies the MIDI output path without starting the full
// sequencer.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gridseq/midi"
	"gridseq/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "note":
		testNote()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List MIDI output ports")
	fmt.Println("  note <port> [note]  - Play a test note on a port (default 60)")
}

func listPorts() {
	ports := midi.OutPorts()
	if len(ports) == 0 {
		fmt.Println("No MIDI output ports found")
		return
	}
	fmt.Println("=== MIDI Output Ports ===")
	for i, name := range ports {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func testNote() {
	if len(os.Args) < 3 {
		usage()
		return
	}
	portName := os.Args[2]
	note := 60
	if len(os.Args) > 3 {
		if n, err := strconv.Atoi(os.Args[3]); err == nil {
			note = n
		}
	}

	backend, err := midi.Open(portName, 1)
	if err != nil {
		fmt.Printf("open: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing note %d on %q...\n", note, portName)
	timbre := sequencer.Timbre{Waveform: sequencer.WaveSquare, Volume: 0.8}
	backend.PlayVoice(note, time.Now(), 500*time.Millisecond, timbre)

	// wait out the NoteOff timer before exiting
	time.Sleep(700 * time.Millisecond)
	fmt.Println("Done")
}
