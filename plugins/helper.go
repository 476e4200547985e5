package plugins

import (
	"fmt"

	"github.com/kingrea/modhost/internal/deprecation"
	"github.com/kingrea/modhost/internal/mod"
)

// deprecatedLogSince is the host version that deprecated Helper.Log.
const deprecatedLogSince = "1.1"

// helper implements mod.Helper for one loaded mod.
type helper struct {
	manifest     *mod.Manifest
	lookup       mod.Lookup
	logger       Logger
	deprecations *deprecation.Manager
}

func (h *helper) Manifest() *mod.Manifest {
	return h.manifest
}

func (h *helper) Registry() mod.Lookup {
	return h.lookup
}

func (h *helper) Logf(format string, args ...any) {
	if h.logger == nil {
		return
	}
	h.logger.Printf("[%s] %s", h.manifest.Name, fmt.Sprintf(format, args...))
}

func (h *helper) Log(message string) {
	if h.deprecations != nil {
		h.deprecations.Warn("", "Helper.Log", deprecatedLogSince, deprecation.PendingRemoval)
	}
	h.Logf("%s", message)
}
