package graph

// Node identifies a state in the conversation graph.
type Node int

const (
	// NodeStart seeds the conversation with the initial user message.
	NodeStart Node = iota
	// NodeRequestModel submits the conversation and folds the streamed
	// response into history.
	NodeRequestModel
	// NodeExecuteTools dispatches the pending tool use and appends its
	// result to history.
	NodeExecuteTools
	// NodeEnd captures the final result. It is the terminal node.
	NodeEnd
)

// String implements fmt.Stringer.
func (n Node) String() string {
	switch n {
	case NodeStart:
		return "start"
	case NodeRequestModel:
		return "request_model"
	case NodeExecuteTools:
		return "execute_tools"
	case NodeEnd:
		return "end"
	default:
		return "unknown"
	}
}

// transition is the outcome a node behavior reports after executing. The
// pair (node, transition) is validated against the edge table before the
// machine moves on.
type transition int

const (
	toRequestModel transition = iota
	toExecuteTools
	toEnd
	terminal
)

// String implements fmt.Stringer.
func (t transition) String() string {
	switch t {
	case toRequestModel:
		return "request_model"
	case toExecuteTools:
		return "execute_tools"
	case toEnd:
		return "end"
	case terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// edges is the closed set of legal transitions. A node behavior reporting
// anything outside this table is a bug and surfaces as
// InvalidTransitionError.
var edges = map[Node]map[transition]Node{
	NodeStart: {
		toRequestModel: NodeRequestModel,
	},
	NodeRequestModel: {
		toExecuteTools: NodeExecuteTools,
		toEnd:          NodeEnd,
	},
	NodeExecuteTools: {
		toRequestModel: NodeRequestModel,
	},
	NodeEnd: {
		terminal: NodeEnd,
	},
}
