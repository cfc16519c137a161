package httpwire

// Route identifies the handler a request is dispatched to.
type Route int

const (
	RouteNotFound Route = iota
	RoutePage
	RouteStream
	RouteData
)

func (r Route) String() string {
	switch r {
	case RoutePage:
		return "page"
	case RouteStream:
		return "stream"
	case RouteData:
		return "data"
	default:
		return "not_found"
	}
}

// Routes lists every route, in declaration order.
var Routes = []Route{RouteNotFound, RoutePage, RouteStream, RouteData}

// Dispatch matches a path exactly. Query strings are not stripped, so
// "/data?x=1" is not found.
func Dispatch(path string) Route {
	switch path {
	case "/":
		return RoutePage
	case "/stream":
		return RouteStream
	case "/data":
		return RouteData
	default:
		return RouteNotFound
	}
}

// RouteOf parses raw request bytes and dispatches the path. Malformed input
// falls through to RouteNotFound.
func RouteOf(raw []byte) Route {
	req, ok := ParseRequest(raw)
	if !ok {
		return RouteNotFound
	}
	return Dispatch(req.Path)
}
