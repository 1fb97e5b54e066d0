package main

import (
	"log"

	"github.com/alecthomas/kong"
)

type cli struct {
	Decode decodeCmd `cmd:"" help:"Classify raw words and print them."`
	Build  buildCmd  `cmd:"" help:"Build a heap image from a JSON value literal."`
	Run    runCmd    `cmd:"" help:"Replay a heap image through the runtime driver."`
}

func main() {
	log.SetFlags(0)

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("lisprt"),
		kong.Description("Decode words and replay heap images of the compiled Lisp runtime."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		log.Fatal(err)
	}
}
