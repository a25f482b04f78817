package guard

import "context"

// CallInfo carries per-invocation identifiers from the caller down to the
// gate. It travels on the context so the wrapper can pick it up without
// changing the tool execution signature.
type CallInfo struct {
	ToolCallID string
	AgentID    string
	SessionKey string
}

type callInfoKey struct{}

func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callInfoKey{}, info)
}

func CallInfoFrom(ctx context.Context) CallInfo {
	if ctx == nil {
		return CallInfo{}
	}
	info, _ := ctx.Value(callInfoKey{}).(CallInfo)
	return info
}
