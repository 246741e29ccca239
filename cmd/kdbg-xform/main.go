// Command kdbg-xform is the instrumenting source transformer's
// command-line entry point: it reads one source file, computes the
// edits and injected globals that give it breakpoint and step support,
// and writes the instrumented result to the given output path.
package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"

	"github.com/kdbg/kdbg/transform"
)

func main() {
	app := cli.NewApp()
	app.Name = "kdbg-xform"
	app.Usage = "instruments a source file for kdbg breakpoint and step support"
	app.UsageText = "kdbg-xform [options] <input> <output>"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "step",
			Usage: "force step-mode instrumentation even without a StepEnable(); marker",
		},
		&cli.StringFlag{
			Name:  "runtime-path",
			Usage: "import path of the kdbg runtime package to inject",
		},
		&cli.BoolFlag{
			Name:  "explain",
			Usage: "also print the computed edit and global list (the output is still written)",
		},
	}
	app.Action = runAction

	if err := app.Run(os.Args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(transform.ExitIOError)
	}
}

func runAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: kdbg-xform [options] <input> <output>", transform.ExitUsage)
	}

	inputPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	opts := transform.Options{
		StepMode:          c.Bool("step"),
		RuntimeImportPath: c.String("runtime-path"),
	}

	res, code, err := transform.Transform(inputPath, outputPath, opts)
	if err != nil {
		return cli.Exit(err.Error(), code)
	}

	if c.Bool("explain") {
		explain(res)
	}

	if code != transform.ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// explain renders the computed edits and globals as two trees on
// stdout. It runs after Transform has already written the output, so
// it does not skip applying the edits - useful for debugging the
// transformer itself without needing to diff instrumented output by hand.
func explain(res *transform.Result) {
	edits := treeprint.New()
	edits.SetValue("edits")
	for _, e := range res.Edits {
		edits.AddNode(fmt.Sprintf("offset=%d delete=%d insert=%q", e.Offset, e.DeleteLen, e.Insert))
	}
	fmt.Println(edits.String())

	globals := treeprint.New()
	globals.SetValue("globals")
	for _, g := range res.Globals {
		globals.AddNode(fmt.Sprintf("%s (%s)", g.Name, g.Kind))
	}
	fmt.Println(globals.String())
}
