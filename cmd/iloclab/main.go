// Command iloclab is the CLI driver for the ILOC single-basic-block
// compiler lab. It owns flag routing, file I/O, and diagnostic
// formatting, and otherwise only calls into internal/scan, internal/parse,
// internal/rename, internal/regalloc, internal/depgraph, internal/priority,
// internal/schedule, and internal/render (plus the internal/ir and
// internal/token types they exchange).
//
// Grounded on cmd/wazero/wazero.go's doMain(stdout, stderr) indirection,
// which keeps the real entry point trivially testable.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/sarahluan11/iloclab/internal/depgraph"
	"github.com/sarahluan11/iloclab/internal/ir"
	"github.com/sarahluan11/iloclab/internal/parse"
	"github.com/sarahluan11/iloclab/internal/priority"
	"github.com/sarahluan11/iloclab/internal/regalloc"
	"github.com/sarahluan11/iloclab/internal/render"
	"github.com/sarahluan11/iloclab/internal/rename"
	"github.com/sarahluan11/iloclab/internal/scan"
	"github.com/sarahluan11/iloclab/internal/schedule"
	"github.com/sarahluan11/iloclab/internal/token"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated from main so it can be exercised by tests without
// touching process exit codes.
func doMain(stdout, stderr io.Writer) int {
	logrus.SetOutput(stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	flags := pflag.NewFlagSet("iloclab", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	help := flags.BoolP("h", "h", false, "Prints usage.")
	verbose := flags.BoolP("v", "v", false, "Enable verbose stage diagnostics.")
	scanFile := flags.StringP("s", "s", "", "Stream tokens from FILE.")
	parseFile := flags.StringP("p", "p", "", "Parse and print the IR from FILE.")
	renameFile := flags.StringP("r", "r", "", "Rename and print the renamed IR from FILE.")
	renameFileAlt := flags.StringP("x", "x", "", "Alias for -r.")
	scheduleFile := flags.StringP("d", "d", "", "Rename, schedule, and print the two-slot schedule for FILE.")
	dotFile := flags.String("dot", "", "With -d, also write the dependence graph to this .dot path.")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 1 // pflag already printed the error to stderr
	}

	if *help {
		printUsage(stderr)
		return 0
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	switch {
	case *scanFile != "":
		return doScan(*scanFile, stdout, stderr)
	case *parseFile != "":
		return doParse(*parseFile, stdout, stderr)
	case *renameFile != "":
		return doRename(*renameFile, stdout, stderr)
	case *renameFileAlt != "":
		return doRename(*renameFileAlt, stdout, stderr)
	case *scheduleFile != "":
		return doSchedule(*scheduleFile, *dotFile, stdout, stderr)
	}

	rest := flags.Args()
	if len(rest) != 2 {
		printUsage(stderr)
		return 1
	}
	k, err := strconv.Atoi(rest[0])
	if err != nil || k < 3 || k > 64 {
		fmt.Fprintf(stderr, "ERROR: invalid register budget %q: must be an integer in [3,64]\n", rest[0])
		return 1
	}
	return doAllocate(k, rest[1], stdout, stderr)
}

func printUsage(stderr io.Writer) {
	fmt.Fprintln(stderr, `iloclab - ILOC single-basic-block compiler lab

Usage:
  iloclab -h                 Prints this message.
  iloclab -s FILE            Stream tokens to stdout.
  iloclab -p FILE            Parse and print the IR.
  iloclab -r FILE            Parse, rename, print the renamed IR.
  iloclab -x FILE            Alias for -r.
  iloclab -d FILE            Rename, schedule, print the two-slot schedule.
  iloclab k FILE             Rename, allocate into k physical registers (3<=k<=64), print the allocated IR.`)
}

func openAndParse(path string) (*ir.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	p := parse.New(scan.New(f))
	b, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return b, nil
}

func doScan(path string, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrapf(err, "opening %s", path))
		return 1
	}
	defer f.Close()

	s := scan.New(f)
	for {
		t := s.Next()
		fmt.Fprintf(stdout, "%d: < %s, %q >\n", t.Line, t.Category, t.Lexeme)
		if t.Category == token.EOF {
			break
		}
	}
	return 0
}

func doParse(path string, stdout, stderr io.Writer) int {
	b, err := openAndParse(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprint(stdout, render.Source(b))
	return 0
}

func doRename(path string, stdout, stderr io.Writer) int {
	b, err := openAndParse(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	result := rename.Rename(b)
	logrus.WithFields(logrus.Fields{"vr_count": result.VRCount, "maxlive": result.MaxLive}).Debug("renamed block")
	fmt.Fprint(stdout, render.Renamed(b))
	return 0
}

func doSchedule(path, dotPath string, stdout, stderr io.Writer) int {
	b, err := openAndParse(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	rename.Rename(b)

	g := depgraph.Build(b)
	priority.Compute(g)

	if dotPath != "" {
		f, err := os.Create(dotPath)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrapf(err, "creating %s", dotPath))
			return 1
		}
		err = render.WriteDOT(g, f)
		f.Close()
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrap(err, "writing dependence graph"))
			return 1
		}
	}

	cycles, err := schedule.Schedule(g)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprint(stdout, render.Schedule(cycles))
	return 0
}

func doAllocate(k int, path string, stdout, stderr io.Writer) int {
	b, err := openAndParse(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	result := rename.Rename(b)
	logrus.WithFields(logrus.Fields{"vr_count": result.VRCount, "maxlive": result.MaxLive, "k": k}).Debug("renamed block")

	a := regalloc.NewAllocator(k)
	if err := a.Allocate(b, result.MaxLive); err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "fatal allocator error"))
		return 1
	}
	fmt.Fprint(stdout, render.Allocated(b))
	return 0
}
