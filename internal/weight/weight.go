// Package weight resolves the estimated cost of a test file from recorded
// execution times, falling back to a complexity score.
package weight

import "math"

// History maps a test file path to its recorded execution time in seconds.
// A nil History means no historical data was requested.
type History map[string]float64

// Lookup returns the recorded duration for path if it is usable
func (h History) Lookup(path string) (float64, bool) {
	if h == nil {
		return 0, false
	}
	v, ok := h[path]
	if !ok || !Valid(v) {
		return 0, false
	}
	return v, true
}

// Valid reports whether v is a usable duration: finite and positive
func Valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Sanitize returns a copy of raw without entries that are not valid
// durations, and the number of entries dropped.
func Sanitize(raw map[string]float64) (History, int) {
	h := make(History, len(raw))
	dropped := 0
	for path, v := range raw {
		if path == "" || !Valid(v) {
			dropped++
			continue
		}
		h[path] = v
	}
	return h, dropped
}

// Resolve returns the recorded duration for path, or fallback when history
// is absent or holds no usable value for it.
func Resolve(path string, h History, fallback float64) float64 {
	if v, ok := h.Lookup(path); ok {
		return v
	}
	return fallback
}

// Coverage counts how many of files have a recorded duration
func (h History) Coverage(files []string) int {
	n := 0
	for _, f := range files {
		if _, ok := h.Lookup(f); ok {
			n++
		}
	}
	return n
}

// Blend merges a new observation into a previous one. alpha is the weight of
// the new observation; values outside (0, 1] replace the old value outright.
func Blend(old, observed, alpha float64) float64 {
	if !Valid(old) || alpha <= 0 || alpha > 1 || math.IsNaN(alpha) {
		return observed
	}
	return old*(1-alpha) + observed*alpha
}
