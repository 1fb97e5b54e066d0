package lisprt

import (
	"bufio"
	"io"
	"log"
	"os"
)

// Exit statuses returned by Driver.Run.
const (
	ExitOK    = 0
	ExitStuck = 1
	ExitFault = 2
)

// Entry is a compiled program. It receives the runtime holding the heap and
// returns the program's result, or the error from Fail.
type Entry func(rt *Runtime) (Word, error)

// Runtime is what an entry computation sees while it runs.
type Runtime struct {
	heap    *Heap
	printer *Printer
	out     io.Writer
}

// Heap returns the heap owned by this run.
func (rt *Runtime) Heap() *Heap { return rt.heap }

// Print writes the text of w to the program output without a newline and
// returns w unchanged.
func (rt *Runtime) Print(w Word) (Word, error) {
	return rt.printer.Print(rt.out, w)
}

// Fail is shorthand for the package-level Fail.
func (rt *Runtime) Fail(description string) error {
	return Fail(description)
}

// Config tunes a Driver. Zero fields take their defaults.
type Config struct {
	HeapSize int
	HeapBase uint64
	MaxDepth int
	// Logger receives faults that are not part of the program's output.
	Logger *log.Logger
}

// Driver runs one entry computation and prints its result.
type Driver struct {
	out io.Writer
	cfg Config
}

// NewDriver returns a driver writing program output to out.
func NewDriver(out io.Writer, cfg Config) *Driver {
	if cfg.HeapSize == 0 {
		cfg.HeapSize = DefaultHeapSize
	}
	if cfg.HeapBase == 0 {
		cfg.HeapBase = DefaultHeapBase
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "lisprt: ", 0)
	}
	return &Driver{out: out, cfg: cfg}
}

// Run allocates the heap, invokes entry once and prints its result followed
// by a newline. A stuck state writes Stuck[...] with nothing after it and
// returns ExitStuck. Heap faults and write failures go to the logger and
// return ExitFault.
func (d *Driver) Run(entry Entry) int {
	bw := bufio.NewWriter(d.out)
	defer bw.Flush()

	heap, err := NewHeapAt(d.cfg.HeapBase, d.cfg.HeapSize)
	if err != nil {
		d.cfg.Logger.Printf("allocate heap: %v", err)
		return ExitFault
	}
	rt := &Runtime{
		heap:    heap,
		printer: NewPrinter(heap, d.cfg.MaxDepth),
		out:     bw,
	}

	result, err := entry(rt)
	if err != nil {
		if se, ok := AsStuck(err); ok {
			bw.WriteString(se.Error())
			return ExitStuck
		}
		d.cfg.Logger.Printf("entry: %v", err)
		return ExitFault
	}

	if _, err := rt.Print(result); err != nil {
		d.cfg.Logger.Printf("print result: %v", err)
		return ExitFault
	}
	bw.WriteByte('\n')
	if err := bw.Flush(); err != nil {
		d.cfg.Logger.Printf("write output: %v", err)
		return ExitFault
	}
	return ExitOK
}

// Main is the process entry point for a compiled program. It interprets no
// arguments and exits with the status from Run.
func Main(entry Entry) {
	os.Exit(NewDriver(os.Stdout, Config{}).Run(entry))
}
