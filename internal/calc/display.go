package calc

import (
	"sync"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/cache"
)

// State is the per-session calculation context: the result cache and what the
// browser currently shows.
type State struct {
	Cache   *cache.Results
	Display *Display
}

// NewState creates an empty calculation context.
func NewState() *State {
	return &State{Cache: cache.NewResults(), Display: NewDisplay()}
}

type view struct {
	want  Fingerprint // the input the display must reflect
	entry cache.Entry // results for want, empty while none are known
}

// Display tracks, per jurisdiction, which fingerprint the browser should be
// showing and the results it shows for it. Only results for the wanted
// fingerprint are ever applied, so a slow answer for older input cannot
// overwrite a newer one.
type Display struct {
	mu       sync.Mutex
	views    map[domain.Jurisdiction]*view
	inflight map[string]int
}

// NewDisplay creates an empty display.
func NewDisplay() *Display {
	return &Display{
		views:    make(map[domain.Jurisdiction]*view),
		inflight: make(map[string]int),
	}
}

func (d *Display) viewFor(j domain.Jurisdiction) *view {
	v, ok := d.views[j]
	if !ok {
		v = &view{}
		d.views[j] = v
	}
	return v
}

// Restore points the display at fp after a form edit. A known entry is shown
// immediately, otherwise the display is cleared.
func (d *Display) Restore(j domain.Jurisdiction, fp Fingerprint, entry cache.Entry, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.viewFor(j)
	v.want = fp
	if ok {
		v.entry = entry
	} else {
		v.entry = cache.Entry{}
	}
}

// Show displays a cached entry for fp.
func (d *Display) Show(j domain.Jurisdiction, fp Fingerprint, entry cache.Entry) {
	d.Restore(j, fp, entry, true)
}

// Begin clears the displayed results of j and marks fp as being computed. It
// must be called before the engine call starts.
func (d *Display) Begin(j domain.Jurisdiction, fp Fingerprint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.viewFor(j)
	v.want = fp
	v.entry = cache.Entry{}
	d.inflight[fp.Key()]++
}

// Complete ends the computation of fp and shows entry if fp is still wanted.
// It reports whether entry was applied.
func (d *Display) Complete(j domain.Jurisdiction, fp Fingerprint, entry cache.Entry) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.done(fp)
	v := d.viewFor(j)
	if v.want != fp {
		return false
	}
	v.entry = entry
	return true
}

// Fail ends the computation of fp without showing anything.
func (d *Display) Fail(fp Fingerprint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done(fp)
}

func (d *Display) done(fp Fingerprint) {
	if n := d.inflight[fp.Key()]; n > 1 {
		d.inflight[fp.Key()] = n - 1
		return
	}
	delete(d.inflight, fp.Key())
}

// Snapshot returns the wanted fingerprint of j, the results shown for it and
// whether a computation for it is still running.
func (d *Display) Snapshot(j domain.Jurisdiction) (Fingerprint, cache.Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.viewFor(j)
	return v.want, v.entry, d.inflight[v.want.Key()] > 0
}
