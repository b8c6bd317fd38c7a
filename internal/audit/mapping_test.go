package audit

import "testing"

func TestParseRoute(t *testing.T) {
	cases := []struct {
		method, path string
		want         ActionResource
	}{
		{"POST", "/v1/sessions", ActionResource{"create", "session"}},
		{"POST", "/v1/sessions/heartbeat", ActionResource{"heartbeat", "session"}},
		{"POST", "/v1/sessions/end", ActionResource{"end", "session"}},
		{"POST", "/v1/sessions/force-end", ActionResource{"force_end", "session"}},
		{"GET", "/v1/sessions", ActionResource{"list", "session"}},
		{"POST", "/v1/presence/entry", ActionResource{"entry", "presence"}},
		{"POST", "/v1/presence/exit", ActionResource{"exit", "presence"}},
		{"GET", "/v1/presence", ActionResource{"list", "presence"}},
		{"GET", "/v1/presence/abc123", ActionResource{"get", "presence"}},
		{"POST", "/v1/login", ActionResource{"login", "auth"}},
		{"GET", "/v1/faculties", ActionResource{"list", "faculty"}},
		{"DELETE", "/v1/guards/g1", ActionResource{"delete", "guard"}},
		{"GET", "/health", ActionResource{"list", "health"}},
	}
	for _, c := range cases {
		got := ParseRoute(c.method, c.path)
		if got != c.want {
			t.Errorf("ParseRoute(%s %s) = %+v, want %+v", c.method, c.path, got, c.want)
		}
	}
}
