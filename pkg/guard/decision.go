package guard

// Decision is the terminal outcome of the gate: either the call is blocked
// with a human-readable reason, or it is allowed with the final parameter
// set (possibly rewritten by hooks). Never both.
type Decision struct {
	Blocked bool
	Reason  string
	Params  map[string]any
}

func blocked(reason string) Decision {
	return Decision{Blocked: true, Reason: reason}
}

func allowed(params map[string]any) Decision {
	return Decision{Params: params}
}

// Block reasons for the failure paths the gate resolves itself.
const (
	ReasonCoachNotReady    = "security coach not yet initialized"
	ReasonCoachError       = "security coach internal error"
	ReasonCoachDefault     = "blocked by security coach"
	ReasonHookBlockDefault = "blocked by hook"
)
