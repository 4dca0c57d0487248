package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/frexlib/frex/prefilter"
	"github.com/frexlib/frex/regex"
)

var matchColor = color.New(color.FgRed)

var cli struct {
	Pattern string   `arg:"" name:"pattern" help:"Pattern to search for" type:"string"`
	Paths   []string `arg:"" optional:"" name:"path" help:"Files or directories to search" type:"path"`
	Expand  bool     `default:"true" negatable:"" help:"Rewrite ^, $, + and shorthand classes before compiling"`
	Workers int      `default:"8" help:"Maximum number of files scanned concurrently"`
	NoColor bool     `help:"Disable match highlighting"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("frex"),
		kong.Description("Searches files for lines matching a reduced regular expression."),
		kong.UsageOnError(),
	)

	if cli.NoColor {
		color.NoColor = true
	}

	pattern := cli.Pattern
	if cli.Expand {
		pattern = regex.Expand(pattern)
	}

	re, err := regex.Compile(pattern)
	if err != nil {
		var perr *regex.PatternError
		if errors.As(err, &perr) {
			log.Fatalf("invalid pattern: %v\n  %s\n  %*c", err, perr.Pattern, perr.Pos+1, '^')
		}
		log.Fatalf("failed to build pattern: %v", err)
	}
	filter := prefilter.FromPattern(pattern)

	if len(cli.Paths) == 0 {
		cli.Paths = []string{"."}
	}

	var files []string
	for _, path := range cli.Paths {
		info, err := os.Lstat(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		if info.IsDir() {
			files, err = collectDir(path, files)
		} else {
			files = append(files, path)
		}
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	if searchFiles(files, re, filter) {
		os.Exit(1)
	}
}

// collectDir gathers the regular files below path. Symlinks are resolved;
// broken links and links to directories are skipped.
func collectDir(path string, files []string) ([]string, error) {
	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var info os.FileInfo
		for {
			info, err = os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if info.Mode()&fs.ModeSymlink != fs.ModeSymlink {
				break
			}

			path, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		if info.IsDir() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// searchFiles scans every file with a bounded pool of workers and prints the
// rendered results in file order, so output never interleaves. It reports
// whether any file failed to load.
func searchFiles(files []string, re *regex.Regex, filter *prefilter.Filter) (failed bool) {
	type result struct {
		out string
		err error
	}
	results := make([]result, len(files))

	workers := cli.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out, err := searchFile(path, re, filter)
			results[i] = result{out, err}
		}(i, path)
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", files[i], r.err)
			failed = true
			continue
		}
		if r.out != "" {
			fmt.Print(r.out)
		}
	}
	return failed
}

// searchFile renders the matching lines of one file, or "" when nothing
// matches.
func searchFile(path string, re *regex.Regex, filter *prefilter.Filter) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	out := strings.Builder{}
	printFileHeader := false
	for i, line := range strings.Split(string(content), "\n") {
		if line == "" || filter.Skip([]byte(line)) {
			continue
		}
		matches := re.FindAll(line, -1)
		if len(matches) == 0 {
			continue
		}

		if !printFileHeader {
			printFileHeader = true
			fmt.Fprintln(&out, path, ":")
		}

		lastMatchEnd := 0
		fmt.Fprintf(&out, "%d:", i+1)
		for _, m := range matches {
			out.WriteString(line[lastMatchEnd:m[0]])
			// A match through an end-of-input construct reaches one past
			// the line; clamp for printing.
			end := m[1]
			if end > len(line) {
				end = len(line)
			}
			matchColor.Fprint(&out, line[m[0]:end])
			lastMatchEnd = end
		}
		out.WriteString(line[lastMatchEnd:])
		out.WriteByte('\n')
	}

	if printFileHeader {
		out.WriteByte('\n')
	}
	return out.String(), nil
}
