//go:build ignore

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/muurk/danmaku/internal/client"
	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/protocol"
)

// Statistics tracks decoding results
type Statistics struct {
	TotalMessages  int
	TotalFiles     int
	DecodeSuccess  int
	DecodeFailure  int
	SkippedFrames  int
	Operations     map[string]int
	Commands       map[string]int
	FailedMessages []FailedMessage
}

// FailedMessage stores information about decoding failures
type FailedMessage struct {
	File       string
	MessageNum int64
	PayloadHex string
	Error      string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_captures <directory-or-file>")
		fmt.Println("Example: go run tools/validate_captures.go ./captures/")
		fmt.Println("         go run tools/validate_captures.go capture-20240102-030405.jsonl")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		Operations: make(map[string]int),
		Commands:   make(map[string]int),
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.jsonl"))
		if err != nil {
			fmt.Printf("Error finding JSONL files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No JSONL files found in %s\n", path)
			os.Exit(1)
		}
	}

	fmt.Printf("=== Danmaku Capture Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	for _, file := range files {
		processFile(file, &stats)
	}

	printStatistics(&stats)
	if stats.DecodeFailure > 0 {
		os.Exit(2)
	}
}

func processFile(filename string, stats *Statistics) {
	records, err := client.ReadCapture(filename)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", filename, err)
		return
	}
	stats.TotalFiles++

	for _, rec := range records {
		if rec.Direction != client.DirectionReceived {
			continue
		}
		stats.TotalMessages++

		fail := func(err error) {
			stats.DecodeFailure++
			stats.FailedMessages = append(stats.FailedMessages, FailedMessage{
				File:       filename,
				MessageNum: rec.MessageNum,
				PayloadHex: rec.PayloadHex,
				Error:      err.Error(),
			})
		}

		payload, err := rec.Payload()
		if err != nil {
			fail(err)
			continue
		}

		pkt, err := protocol.Decode(payload)
		stats.Operations[pkt.Operation.String()]++
		stats.SkippedFrames += pkt.Skipped
		if err != nil {
			fail(err)
			continue
		}
		stats.DecodeSuccess++

		if pkt.Operation != protocol.OpMessage {
			continue
		}
		for _, fragment := range pkt.Body {
			ev, err := dispatch.ParseFragment(fragment)
			switch {
			case errors.Is(err, dispatch.ErrUnknownCommand):
				stats.Commands["(other)"]++
			case err != nil:
				stats.Commands["(malformed)"]++
			default:
				stats.Commands[ev.Kind().String()]++
			}
		}
	}
}

func printSorted(counts map[string]int, total int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-14s %6d (%.2f%%)\n", k, counts[k], float64(counts[k])/float64(total)*100)
	}
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Received Messages:  %d\n", stats.TotalMessages)
	if stats.TotalMessages == 0 {
		return
	}
	fmt.Printf("Decode Success:     %d (%.2f%%)\n", stats.DecodeSuccess,
		float64(stats.DecodeSuccess)/float64(stats.TotalMessages)*100)
	fmt.Printf("Decode Failure:     %d (%.2f%%)\n", stats.DecodeFailure,
		float64(stats.DecodeFailure)/float64(stats.TotalMessages)*100)
	fmt.Printf("Skipped Sub-frames: %d\n", stats.SkippedFrames)

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("OPERATION DISTRIBUTION\n")
	fmt.Printf("----------------------------------------\n")
	printSorted(stats.Operations, stats.TotalMessages)

	fragments := 0
	for _, n := range stats.Commands {
		fragments += n
	}
	if fragments > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("FRAGMENT COMMANDS (%d fragments)\n", fragments)
		fmt.Printf("----------------------------------------\n")
		printSorted(stats.Commands, fragments)
	}

	if len(stats.FailedMessages) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("DECODE FAILURES (%d total)\n", len(stats.FailedMessages))
		fmt.Printf("----------------------------------------\n")

		maxShow := 10
		if len(stats.FailedMessages) > maxShow {
			fmt.Printf("(Showing first %d of %d failures)\n\n", maxShow, len(stats.FailedMessages))
		}

		for i, failed := range stats.FailedMessages {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nFailure #%d:\n", i+1)
			fmt.Printf("  File: %s (msg #%d)\n", failed.File, failed.MessageNum)
			fmt.Printf("  Error: %s\n", failed.Error)
			hexPreview := failed.PayloadHex
			if len(hexPreview) > 80 {
				hexPreview = hexPreview[:80] + "..."
			}
			fmt.Printf("  Payload: %s\n", hexPreview)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.DecodeFailure == 0 {
		fmt.Printf("✅ SUCCESS: All messages decoded\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d messages failed to decode\n", stats.DecodeFailure)
	}
	fmt.Printf("========================================\n")
}
