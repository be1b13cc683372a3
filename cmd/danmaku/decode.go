package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/danmaku/internal/client"
	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/protocol"
	"github.com/muurk/danmaku/internal/ui"
)

// Decode command flags
var (
	decodeHex     string
	decodeCapture string
	decodeAll     bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode frames offline",
	Long: `Decode a single frame given as hex, or replay every received frame of a
capture file written by 'danmaku watch --capture-dir'.

For each frame the packet header, its body fragments and the resulting chat
events are printed.`,
	Example: `  # Decode a popularity frame
  danmaku decode --hex 0000001400100001000000030000000100002710

  # Replay a capture
  danmaku decode --capture ./captures/capture-20240102-030405.jsonl`,
	Args: cobra.NoArgs,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeHex, "hex", "", "Frame bytes as hex (spaces allowed)")
	decodeCmd.Flags().StringVar(&decodeCapture, "capture", "", "Capture file (JSONL) to replay")
	decodeCmd.Flags().BoolVar(&decodeAll, "all", false, "With --capture, include frames the client sent")

	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch {
	case decodeHex != "" && decodeCapture != "":
		return fmt.Errorf("--hex and --capture are mutually exclusive")
	case decodeHex != "":
		return decodeHexFrame(out, decodeHex)
	case decodeCapture != "":
		return decodeCaptureFile(out, decodeCapture, decodeAll)
	default:
		return fmt.Errorf("one of --hex or --capture is required")
	}
}

// decodeStats summarizes a replay
type decodeStats struct {
	frames    int
	events    int
	errors    int
	skipped   int
	fragments int
}

// decodeFrame prints one frame and returns what it contributed
func decodeFrame(out io.Writer, d *dispatch.Dispatcher, data []byte) decodeStats {
	pkt, err := protocol.Decode(data)

	st := decodeStats{frames: 1, skipped: pkt.Skipped, fragments: len(pkt.Body)}
	_, _ = fmt.Fprintf(out, "%s\n", pkt)
	if err != nil {
		st.errors++
		_, _ = fmt.Fprintf(out, "  error: %v\n", err)
	}
	for i, fragment := range pkt.Body {
		_, _ = fmt.Fprintf(out, "  fragment %d: %s\n", i, fragment)
	}
	st.events = d.Dispatch(pkt)
	return st
}

func decodeHexFrame(out io.Writer, s string) error {
	data, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	logging.LogRawBytes("Decoding frame", data)

	d := dispatch.New(dispatch.NewPrintHandler(out))
	decodeFrame(out, d, data)
	return nil
}

func decodeCaptureFile(out io.Writer, path string, all bool) error {
	records, err := client.ReadCapture(path)
	if err != nil {
		return err
	}

	d := dispatch.New(dispatch.NewPrintHandler(out))
	var total decodeStats
	for _, rec := range records {
		if !all && rec.Direction != client.DirectionReceived {
			continue
		}
		data, err := rec.Payload()
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "#%d %s %s ", rec.MessageNum, rec.Timestamp.Format("15:04:05.000"), rec.Direction)
		st := decodeFrame(out, d, data)
		total.frames += st.frames
		total.events += st.events
		total.errors += st.errors
		total.skipped += st.skipped
		total.fragments += st.fragments
	}

	p := ui.NewPrinter(out)
	p.Newline()
	p.PrintSuccess("Capture decoded",
		ui.Param{Key: "File", Value: path},
		ui.Param{Key: "Frames", Value: strconv.Itoa(total.frames)},
		ui.Param{Key: "Fragments", Value: strconv.Itoa(total.fragments)},
		ui.Param{Key: "Events", Value: strconv.Itoa(total.events)},
		ui.Param{Key: "Skipped", Value: strconv.Itoa(total.skipped)},
		ui.Param{Key: "Errors", Value: strconv.Itoa(total.errors)},
	)
	return nil
}
