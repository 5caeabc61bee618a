package layout

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Engine memoizes Place across re-renders. Recomputing a layout whose
// inputs did not change would re-randomize a visually stable
// constellation, so the engine fingerprints the inputs (center name,
// child identities and seeds, options) and returns the previous result
// when the fingerprint matches.
//
// Engine is not safe for concurrent use; each explorer session owns one.
type Engine struct {
	opts Options

	lastKey string
	last    []Placed
}

// NewEngine creates a memoizing layout engine with the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Layout returns relaxed positions for items around centerName,
// recomputing only when the inputs changed since the previous call.
func (e *Engine) Layout(centerName string, items []Item) []Placed {
	key := fingerprint(centerName, items, e.opts)
	if key == e.lastKey && e.last != nil {
		return e.last
	}

	e.last = Place(centerName, items, e.opts)
	e.lastKey = key
	return e.last
}

// Invalidate drops the memoized result, forcing the next Layout call to
// recompute. Callers use this when the container size or sizing function
// changes out from under the engine.
func (e *Engine) Invalidate() {
	e.lastKey = ""
	e.last = nil
}

// fingerprint hashes everything that determines a layout result.
func fingerprint(centerName string, items []Item, opts Options) string {
	h := sha256.New()
	h.Write([]byte(centerName))
	h.Write([]byte{0})

	var buf [8]byte
	writeF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(f*1e6)))
		h.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:], opts.Seed)
	h.Write(buf[:])
	writeF(float64(opts.Iterations))
	writeF(opts.PairMargin)
	writeF(opts.CenterMargin)
	writeF(opts.Pull)
	writeF(opts.Jitter)

	for _, it := range items {
		h.Write([]byte(it.ID))
		h.Write([]byte{0})
		h.Write([]byte(it.Name))
		h.Write([]byte{0})
		if it.Seed != nil {
			writeF(it.Seed.X)
			writeF(it.Seed.Y)
		} else {
			h.Write([]byte{1})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
