// Command smoketest runs the ISO-8601 codec over a corpus of sample values
// and reports parse and round-trip statistics. The corpus directory is
// walked for .txt files holding one value per line; lines starting with '#'
// are skipped. Duration lines additionally verify that re-encoding the
// parsed value yields text that parses back to the same elapsed time.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ESA-VirES/VirES-Clients/timeutil"
)

const (
	maxWorkers   = 4
	expectedArgs = 2
	maxExamples  = 10
)

type stats struct {
	mu            sync.Mutex
	filesScanned  int
	lines         int
	dateTimes     int
	durations     int
	reconOK       int
	reconFail     int
	failures      int
	failExamples  []string
	reconExamples []string
}

func main() {
	if len(os.Args) != expectedArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s <corpus-directory>\n", os.Args[0])
		os.Exit(1)
	}

	dirPath := os.Args[1]
	st := &stats{}

	var filePaths []string
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".txt") {
			return nil
		}
		filePaths = append(filePaths, path)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to process\n", len(filePaths))
	start := time.Now()

	semaphore := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for _, path := range filePaths {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			processFile(p, st)
		}(path)
	}

	wg.Wait()

	fmt.Fprintf(os.Stderr, "Completed in %s\n\n", time.Since(start).Round(time.Millisecond))
	printStats(st)

	if st.failures > 0 || st.reconFail > 0 {
		os.Exit(1)
	}
}

func processFile(path string, st *stats) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	var lines, dateTimes, durations, reconOK, reconFail, failures int
	var failExamples, reconExamples []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines++

		if d, err := timeutil.ParseDuration(line); err == nil {
			durations++
			enc := timeutil.EncodeDuration(d)
			if again, err := timeutil.ParseDuration(enc); err == nil && again == d {
				reconOK++
			} else {
				reconFail++
				if len(reconExamples) < maxExamples {
					reconExamples = append(reconExamples, fmt.Sprintf("%s -> %s (%v)", line, enc, err))
				}
			}
			continue
		}

		if _, err := timeutil.ParseDateTime(line); err == nil {
			dateTimes++
			continue
		}

		failures++
		if len(failExamples) < maxExamples {
			failExamples = append(failExamples, line)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.filesScanned++
	st.lines += lines
	st.dateTimes += dateTimes
	st.durations += durations
	st.reconOK += reconOK
	st.reconFail += reconFail
	st.failures += failures
	st.failExamples = appendCapped(st.failExamples, failExamples)
	st.reconExamples = appendCapped(st.reconExamples, reconExamples)
}

func appendCapped(dst, src []string) []string {
	for _, s := range src {
		if len(dst) >= maxExamples {
			break
		}
		dst = append(dst, s)
	}
	return dst
}

func printStats(st *stats) {
	fmt.Printf("Files scanned:       %d\n", st.filesScanned)
	fmt.Printf("Values:              %d\n", st.lines)
	fmt.Printf("  date-times:        %d\n", st.dateTimes)
	fmt.Printf("  durations:         %d\n", st.durations)
	fmt.Printf("Duration round trip: %d ok, %d failed\n", st.reconOK, st.reconFail)
	fmt.Printf("Unparseable:         %d\n", st.failures)

	if len(st.reconExamples) > 0 {
		fmt.Println("\nRound-trip failures:")
		for _, s := range st.reconExamples {
			fmt.Printf("  %s\n", s)
		}
	}
	if len(st.failExamples) > 0 {
		fmt.Println("\nUnparseable values:")
		for _, s := range st.failExamples {
			fmt.Printf("  %s\n", s)
		}
	}
}
