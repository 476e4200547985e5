// Package autosave is a sample mod. On entry it reports how many other mods
// are loaded and which of them it knows how to cooperate with, using only the
// read-only registry view from the host helper.
package autosave
