// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// fallbackCueDuration stands in for cues whose track omits a duration.
const fallbackCueDuration = 2 * time.Second

// SRT renders the transcript in SubRip format: numbered cues with
// comma-separated millisecond timestamps.
func SRT(t *types.Transcript, w io.Writer) error {
	for i, line := range t.Lines {
		end := cueEnd(t.Lines, i)
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, clockStamp(line.Start, ','), clockStamp(end, ','), line.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

// VTT renders the transcript in WebVTT format.
func VTT(t *types.Transcript, w io.Writer) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for i, line := range t.Lines {
		end := cueEnd(t.Lines, i)
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			clockStamp(line.Start, '.'), clockStamp(end, '.'), line.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

// cueEnd returns the end time of cue i, falling back to the next cue's
// start (or a fixed duration) when the track omits the duration.
func cueEnd(lines []types.Line, i int) time.Duration {
	line := lines[i]
	if line.Duration > 0 {
		return line.End()
	}
	if i+1 < len(lines) {
		return lines[i+1].Start
	}
	return line.Start + fallbackCueDuration
}

// clockStamp renders hh:mm:ss plus milliseconds with the given
// separator (',' for SRT, '.' for WebVTT).
func clockStamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		ms/3600000, ms%3600000/60000, ms%60000/1000, sep, ms%1000)
}
