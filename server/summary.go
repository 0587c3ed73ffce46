package server

import (
	"strings"
	"unicode"
)

var systemPaths = map[string]bool{
	"/health":        true,
	"/livez":         true,
	"/readyz":        true,
	"/info":          true,
	"/version":       true,
	"/debug/runtime": true,
}

// formatHandlerName shortens gin's handler names for the startup summary:
//
//	github.com/kbukum/imagefeed/api.(*Handlers).SendImage-fm -> Handlers.SendImage
//	github.com/kbukum/imagefeed/server/endpoint.Health.func1 -> health
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}

	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && !strings.ContainsFunc(pkg, unicode.IsUpper) {
		name = rest
	}
	return name
}

var methodRank = map[string]int{
	"GET":    0,
	"POST":   1,
	"PUT":    2,
	"PATCH":  3,
	"DELETE": 4,
}

// methodOrder sorts reads before writes; unknown methods go last.
func methodOrder(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}
