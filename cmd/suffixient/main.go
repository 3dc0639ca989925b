// Command suffixient builds a suffixient set S for a text read from
// stdin, matching spec.md §6's CLI surface:
//
//	suffixient -o OUT [-s] [-p] [-r] [-t]
//
// T is read from stdin up to (but not including) the first 0x00 byte, if
// any. S is written to OUT as 5-byte little-endian records (builder.WriteSet).
// In -t (supermaximal) mode, OUT.lcs and OUT.first are additionally
// written with the LCS and FIRST tables.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/regindex/suffixient/builder"
	"github.com/regindex/suffixient/internal/sacons"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("suffixient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output file for the suffixient set (required)")
	sortSet := fs.Bool("s", false, "sort S in ascending order before writing")
	reportChi := fs.Bool("p", false, "report |S| (chi) on stderr")
	reportR := fs.Bool("r", false, "report the number of BWT runs (r) on stderr")
	supermaximal := fs.Bool("t", false, "supermaximal mode: also write OUT.lcs and OUT.first")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *out == "" {
		fmt.Fprintln(stderr, "suffixient: -o OUT is required")
		return 2
	}

	text, err := readText(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "suffixient: reading stdin: %v\n", err)
		return 1
	}
	if len(text) == 0 {
		fmt.Fprintln(stderr, "suffixient: empty text")
		return 1
	}

	src := sacons.Build(text)
	var opts []builder.Option
	if *supermaximal {
		opts = append(opts, builder.WithSupermaximal())
	}
	res, err := builder.Build(src, len(text), opts...)
	if err != nil {
		fmt.Fprintf(stderr, "suffixient: build: %v\n", err)
		return 1
	}

	s := res.S
	if *sortSet {
		s = res.Sorted()
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(stderr, "suffixient: creating %s: %v\n", *out, err)
		return 1
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := builder.WriteSet(w, s); err != nil {
		fmt.Fprintf(stderr, "suffixient: writing %s: %v\n", *out, err)
		return 1
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(stderr, "suffixient: flushing %s: %v\n", *out, err)
		return 1
	}

	if *supermaximal {
		if err := writeSigned(*out+".lcs", res.LCS); err != nil {
			fmt.Fprintf(stderr, "suffixient: %v\n", err)
			return 1
		}
		if err := writeSigned(*out+".first", res.FIRST); err != nil {
			fmt.Fprintf(stderr, "suffixient: %v\n", err)
			return 1
		}
	}

	if *reportChi {
		fmt.Fprintf(stderr, "chi = %d\n", len(res.S))
	}
	if *reportR {
		fmt.Fprintf(stderr, "r = %d\n", res.Runs)
	}
	return 0
}

func writeSigned(path string, values []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := builder.WriteSigned(w, values); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return w.Flush()
}

// readText reads stdin fully, truncating at the first 0x00 byte per
// spec.md §6's "must not contain 0x00" input rule.
func readText(stdin *os.File) ([]byte, error) {
	r := bufio.NewReader(stdin)
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	for i, b := range buf {
		if b == 0x00 {
			return buf[:i], nil
		}
	}
	return buf, nil
}
