package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

var resourceOverrides = map[string]string{
	"login":     "auth",
	"presence":  "presence",
	"faculties": "faculty",
}

// verbSegments are trailing path segments that name the action itself
// rather than a sub-resource (e.g. POST /v1/sessions/heartbeat).
var verbSegments = map[string]bool{
	"heartbeat": true,
	"end":       true,
	"force-end": true,
	"entry":     true,
	"exit":      true,
	"login":     true,
}

// ParseRoute returns action and resource for an HTTP method and path
// (e.g. POST /v1/sessions/heartbeat -> heartbeat/session).
// Action is a verb: create, get, list, update, delete, or the trailing
// verb segment with dashes normalized to underscores.
// Resource is the first path segment after the version prefix, with a
// trailing "s" trimmed (sessions -> session).
func ParseRoute(method, path string) ActionResource {
	path = strings.Trim(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) > 0 && strings.HasPrefix(segments[0], "v") {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	resource := segments[0]
	if r, ok := resourceOverrides[resource]; ok {
		resource = r
	} else {
		resource = strings.TrimSuffix(resource, "s")
	}
	last := segments[len(segments)-1]
	if verbSegments[last] {
		return ActionResource{Action: strings.ReplaceAll(last, "-", "_"), Resource: resource}
	}
	return ActionResource{Action: methodToAction(method, segments), Resource: resource}
}

func methodToAction(method string, segments []string) string {
	switch strings.ToUpper(method) {
	case "POST":
		return "create"
	case "GET":
		if len(segments) == 1 {
			return "list"
		}
		return "get"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
