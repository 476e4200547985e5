package mods

import (
	"github.com/kingrea/modhost/internal/mod"
	"github.com/kingrea/modhost/internal/mods/autosave"
	"github.com/kingrea/modhost/internal/mods/legacychat"
)

// RegisterBuiltins installs the entry points of every compiled-in mod into
// the provided factory set.
func RegisterBuiltins(factories *mod.Factories) {
	if factories == nil {
		return
	}
	autosave.Register(factories)
	legacychat.Register(factories)
}
