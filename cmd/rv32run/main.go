// Command rv32run loads a flat RV32 memory image and steps the core
// until it traps, optionally pausing for interactive single-stepping.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/exec"
	"github.com/bassosimone/rv32core/pkg/rv32/refenv"
	"github.com/peterh/liner"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "memory image to run")
	memWords := flag.Uint("m", 1<<16, "memory size in words")
	fpWidth := flag.Int("fp", 64, "floating-point register width: 0 (no FPU), 32, 64 or 128")
	maxSteps := flag.Uint64("n", 0, "maximum steps to execute (0: unlimited)")
	interactive := flag.Bool("i", false, "pause for a keypress before every step")
	verbose := flag.Bool("v", false, "print state before every step")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rv32run -f <image> [-m words] [-fp 0|32|64|128] [-n steps] [-i] [-v]")
	}

	fp, err := os.Open(*filename)
	if err != nil {
		log.Fatal(err)
	}
	defer fp.Close()

	e := refenv.New(uint32(*memWords))
	if err := e.LoadImage(fp); err != nil {
		log.Fatal(err)
	}

	state := cpu.New(cpu.Config{FPWidth: cpu.FPWidth(*fpWidth)})

	var line *liner.State
	if *interactive {
		line = liner.NewLiner()
		defer line.Close()
	}

	var steps uint64
	for *maxSteps == 0 || steps < *maxSteps {
		if *verbose {
			log.Printf("rv32run: %s", state)
		}
		if line != nil {
			if _, err := line.Prompt("step> "); err != nil {
				break
			}
		}
		if terr := exec.Step(state, e); terr != nil {
			log.Printf("rv32run: trapped: %s", terr)
			break
		}
		steps++
	}
	fmt.Printf("rv32run: executed %d steps, final state %s\n", steps, state)
	if len(e.Traps) > 0 {
		fmt.Printf("rv32run: last trap: %+v\n", e.Traps[len(e.Traps)-1])
	}
}
