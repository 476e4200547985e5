// Package legacychat is a sample mod written against the old helper API. Its
// entry calls the deprecated Helper.Log, which the host attributes back to
// this mod through the call stack.
package legacychat

import (
	"fmt"

	"github.com/kingrea/modhost/internal/mod"
)

// EntryPoint is the name manifests use to select this mod.
const EntryPoint = "legacychat"

// Mod echoes a greeting into the host log.
type Mod struct {
	greeting string
}

// Register installs the legacychat factory.
func Register(factories *mod.Factories) {
	if factories == nil {
		return
	}
	factories.MustRegister(EntryPoint, func(m *mod.Manifest) (mod.Extension, error) {
		return &Mod{greeting: fmt.Sprintf("%s says hello", m.Label())}, nil
	})
}

// Entry implements mod.Extension.
func (m *Mod) Entry(helper mod.Helper) error {
	m.announce(helper)
	return nil
}

func (m *Mod) announce(helper mod.Helper) {
	helper.Log(m.greeting) //nolint:staticcheck
}
