package autosave

import (
	"time"

	"github.com/kingrea/modhost/internal/mod"
)

const (
	// EntryPoint is the name manifests use to select this mod.
	EntryPoint = "autosave"

	defaultInterval = 10 * time.Minute
)

// knownPartners are mods whose state autosave flushes before saving.
var knownPartners = []string{"Pathoschild.ChestsAnywhere", "spacechase0.JsonAssets"}

// Mod periodically saves the game; here it only plans the schedule.
type Mod struct {
	interval time.Duration
	partners []string
}

// Register installs the autosave factory.
func Register(factories *mod.Factories) {
	if factories == nil {
		return
	}
	factories.MustRegister(EntryPoint, func(*mod.Manifest) (mod.Extension, error) {
		return New(defaultInterval), nil
	})
}

// New constructs the mod with the given save interval.
func New(interval time.Duration) *Mod {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Mod{interval: interval}
}

// Entry implements mod.Extension.
func (m *Mod) Entry(helper mod.Helper) error {
	lookup := helper.Registry()
	loaded := 0
	for range lookup.Manifests() {
		loaded++
	}
	m.partners = m.partners[:0]
	for _, id := range knownPartners {
		if lookup.IsLoaded(id) {
			m.partners = append(m.partners, id)
		}
	}
	helper.Logf("saving every %s; %d mods loaded, %d partners", m.interval, loaded, len(m.partners))
	return nil
}

// Partners returns the partner mods found during Entry.
func (m *Mod) Partners() []string {
	return append([]string(nil), m.partners...)
}
