package tools

// AccessPolicy is one layer of allow/deny filtering over a registry.
type AccessPolicy struct {
	Allow []string
	Deny  []string
}

// ApplyPolicy filters a registry in-place.
// Allow (if non-empty): only listed tools survive.
// Deny: listed tools removed from whatever remains.
func ApplyPolicy(reg *ToolRegistry, policy AccessPolicy) {
	if len(policy.Allow) > 0 {
		allowSet := make(map[string]struct{}, len(policy.Allow))
		for _, name := range policy.Allow {
			allowSet[name] = struct{}{}
		}
		for _, name := range reg.List() {
			if _, ok := allowSet[name]; !ok {
				reg.Remove(name)
			}
		}
	}

	for _, name := range policy.Deny {
		reg.Remove(name)
	}
}
