package procscan

import "strings"

// Marker identifies a required pipeline process by a literal substring of its
// command line. Pattern matching is deliberately loose: the pattern may appear
// anywhere in a longer invocation ("/usr/bin/chromium --headless" satisfies
// "chromium"), and case matters ("Xvfb" is how the display server spells
// itself).
type Marker struct {
	// Label is the key reported to callers.
	Label string
	// Pattern is the literal substring searched for in the snapshot.
	Pattern string
}

// Required is the fixed set of processes the streaming pipeline needs:
// the browser renderer, the media encoder, and the virtual display server.
var Required = []Marker{
	{Label: "chromium", Pattern: "chromium"},
	{Label: "ffmpeg", Pattern: "ffmpeg"},
	{Label: "xvfb", Pattern: "Xvfb"},
}

// Presence maps a marker label to whether its pattern was found in the
// snapshot. Keys are always exactly the labels of Required.
type Presence map[string]bool

// Detect checks each required marker for containment in the snapshot text.
func Detect(snapshot string) Presence {
	p := make(Presence, len(Required))
	for _, m := range Required {
		p[m.Label] = strings.Contains(snapshot, m.Pattern)
	}
	return p
}

// Empty returns a Presence with every required marker reported absent.
// Used when no snapshot could be acquired at all.
func Empty() Presence {
	p := make(Presence, len(Required))
	for _, m := range Required {
		p[m.Label] = false
	}
	return p
}
