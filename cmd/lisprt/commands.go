package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/starfederation/lisprt"
	"github.com/starfederation/lisprt/image"
)

type decodeCmd struct {
	Words []string `arg:"" help:"Raw words in decimal or with a 0x, 0o or 0b prefix."`
}

func (c *decodeCmd) Run() error {
	for _, s := range c.Words {
		w, err := lisprt.ParseWord(s)
		if err != nil {
			return err
		}
		v := lisprt.Decode(w)
		fmt.Printf("%#018x\t%s\t%s\n", uint64(w), v.Kind, w)
	}
	return nil
}

type buildCmd struct {
	Input    string `arg:"" help:"JSON literal file, or - for stdin."`
	Out      string `short:"o" help:"Image file to write." default:"out.img"`
	HeapSize int    `help:"Heap size in bytes." default:"4096"`
}

func (c *buildCmd) Run() error {
	var (
		data []byte
		err  error
	)
	if c.Input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.Input)
	}
	if err != nil {
		return err
	}
	img, err := image.FromJSON(data, c.HeapSize)
	if err != nil {
		return err
	}
	enc, err := image.Marshal(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, enc, 0o644); err != nil {
		return err
	}
	log.Printf("lisprt: wrote %s (%d heap bytes used)", c.Out, len(img.Heap))
	return nil
}

type runCmd struct {
	Image    string `arg:"" help:"Image file written by build."`
	MaxDepth int    `help:"Maximum heap nesting the printer descends." default:"65536"`
}

func (c *runCmd) Run() error {
	data, err := os.ReadFile(c.Image)
	if err != nil {
		return err
	}
	img, err := image.Unmarshal(data)
	if err != nil {
		return err
	}
	cfg := img.Config()
	cfg.MaxDepth = c.MaxDepth
	if code := lisprt.NewDriver(os.Stdout, cfg).Run(img.Entry()); code != lisprt.ExitOK {
		os.Exit(code)
	}
	return nil
}
