// Command ergo drives the cask front end: it lexes and parses source
// files and reports the first diagnostic encountered, if any.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/fatih/color"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/ast"
	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/ergo-lang/ergo/internal/lexer"
	"github.com/ergo-lang/ergo/internal/parser"
)

var (
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	okPrefix    = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func main() {
	dump := flag.Bool("dump", false, "print the parsed AST instead of a success summary")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ergo [flags] <file> [file...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	results := processFiles(files, *dump)

	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", errorPrefix("error:"), r.path, r.err)
			continue
		}
		if *dump {
			fmt.Println(r.dump)
			continue
		}
		fmt.Printf("%s %s\n", okPrefix("ok:"), r.path)
	}

	if failed {
		os.Exit(1)
	}
}

type fileResult struct {
	path string
	dump string
	err  error
}

// processFiles lexes and parses each file concurrently, capped at
// runtime.NumCPU() workers, and returns results in input order.
func processFiles(paths []string, dump bool) []fileResult {
	results := make([]fileResult, len(paths))

	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processFile(path, dump)
		}(i, path)
	}
	wg.Wait()

	return results
}

func processFile(path string, dump bool) fileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}

	a := arena.New()
	d := diag.NewSink(path)

	toks, ok := lexer.Lex(path, src, a, d)
	if !ok {
		dg, _ := d.Diagnostic()
		return fileResult{path: path, err: fmt.Errorf("%s", dg.String())}
	}

	mod, ok := parser.ParseModule(toks, path, a, d)
	if !ok {
		dg, _ := d.Diagnostic()
		return fileResult{path: path, err: fmt.Errorf("%s", dg.String())}
	}

	if dump {
		return fileResult{path: path, dump: ast.Dump(mod)}
	}
	return fileResult{path: path}
}
