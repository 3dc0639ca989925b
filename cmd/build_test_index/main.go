// Command build_test_index builds a suffixient index from a text file and
// a suffixient-set file, and optionally runs MEM queries against a
// FASTA-like pattern file, matching spec.md §6's CLI surface:
//
//	build_test_index TEXT S [LCS FIRST [PATTERNS]]
//
// With only TEXT and S, the index is built in plain mode. Supplying LCS
// and FIRST switches to supermaximal mode (index.BuildSupermaximal).
// PATTERNS, if given, is a FASTA-like file: odd-numbered lines are
// headers echoed verbatim, even-numbered lines are patterns to be
// MEM-matched; results are printed as two lines per pattern, the header
// followed by a line of space-separated "(pos,len)" pairs, matching
// suffixient_index.hpp's find_MEMs driver output.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/regindex/suffixient/builder"
	"github.com/regindex/suffixient/index"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if len(args) != 2 && len(args) != 4 && len(args) != 5 {
		fmt.Fprintln(stderr, "usage: build_test_index TEXT S [LCS FIRST [PATTERNS]]")
		return 2
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "build_test_index: reading %s: %v\n", args[0], err)
		return 1
	}

	sFile, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "build_test_index: opening %s: %v\n", args[1], err)
		return 1
	}
	defer sFile.Close()
	S, err := builder.ReadSet(bufio.NewReader(sFile))
	if err != nil {
		fmt.Fprintf(stderr, "build_test_index: reading %s: %v\n", args[1], err)
		return 1
	}

	var idx *index.Index
	if len(args) >= 4 {
		lcsFile, err := os.Open(args[2])
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: opening %s: %v\n", args[2], err)
			return 1
		}
		defer lcsFile.Close()
		LCS, err := builder.ReadSigned(bufio.NewReader(lcsFile))
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: reading %s: %v\n", args[2], err)
			return 1
		}

		firstFile, err := os.Open(args[3])
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: opening %s: %v\n", args[3], err)
			return 1
		}
		defer firstFile.Close()
		FIRST, err := builder.ReadSigned(bufio.NewReader(firstFile))
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: reading %s: %v\n", args[3], err)
			return 1
		}

		idx, err = index.BuildSupermaximal(text, S, LCS, FIRST)
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: building supermaximal index: %v\n", err)
			return 1
		}
	} else {
		idx, err = index.Build(text, S)
		if err != nil {
			fmt.Fprintf(stderr, "build_test_index: building index: %v\n", err)
			return 1
		}
	}

	if len(args) != 5 {
		fmt.Fprintln(stdout, "index built successfully")
		return 0
	}

	patternsFile, err := os.Open(args[4])
	if err != nil {
		fmt.Fprintf(stderr, "build_test_index: opening %s: %v\n", args[4], err)
		return 1
	}
	defer patternsFile.Close()

	var lines []string
	scanner := bufio.NewScanner(patternsFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "build_test_index: reading %s: %v\n", args[4], err)
		return 1
	}
	if len(lines)%2 != 0 {
		fmt.Fprintf(stderr, "build_test_index: malformed FASTA-like input: odd number of lines in %s\n", args[4])
		return 1
	}

	w := bufio.NewWriter(stdout)
	defer w.Flush()
	for i := 0; i+1 < len(lines); i += 2 {
		header := lines[i]
		pattern := lines[i+1]
		fmt.Fprintln(w, header)
		for _, m := range idx.FindMEMs([]byte(pattern)) {
			fmt.Fprintf(w, "(%d,%d) ", m.Pos, m.Len)
		}
		fmt.Fprintln(w)
	}
	return 0
}
