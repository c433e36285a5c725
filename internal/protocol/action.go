package protocol

// Action is the closed set of operations a legacy ContentServer request can
// resolve to. The caller's intent is never trusted from a single field; it is
// inferred by ResolveAction over the whole request.
type Action int

const (
	// ActionUnsupported means the request could not be classified. Callers
	// must reject it with a 400-class error, never treat it as a no-op.
	ActionUnsupported Action = iota
	ActionServerInfo
	ActionGet
	ActionDelete
	ActionPut
)

func (a Action) String() string {
	switch a {
	case ActionServerInfo:
		return "SERVERINFO"
	case ActionGet:
		return "GET"
	case ActionDelete:
		return "DELETE"
	case ActionPut:
		return "PUT"
	default:
		return "UNSUPPORTED"
	}
}
