// femtoclaw - multi-channel AI agent gateway
// License: MIT

package builtin

import (
	"sort"

	"github.com/femtoclaw/femtoclaw/pkg/plugin"
)

// Factory creates one builtin plugin instance.
type Factory func() plugin.Plugin

// Catalog returns compile-time builtin plugin factories by name.
func Catalog() map[string]Factory {
	return map[string]Factory{
		"arglimit": func() plugin.Plugin {
			return NewArgLimitPlugin(ArgLimitConfig{MaxTimeoutSeconds: 300})
		},
		"redactor": func() plugin.Plugin {
			return NewRedactorPlugin(nil)
		},
	}
}

// Names returns sorted builtin plugin names.
func Names() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
