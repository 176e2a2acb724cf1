package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/voicemap/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*ServerComponent)(nil)
	_ component.Describable   = (*ServerComponent)(nil)
	_ component.RouteProvider = (*ServerComponent)(nil)
)

// systemPaths are the operational endpoints registered by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/info":    true,
	"/version": true,
	"/metrics": true,
}

// ServerComponent registers a Server with the component registry. It must be
// registered last so every other component has mounted its routes.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

// Name returns the component name used for registration.
func (sc *ServerComponent) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (sc *ServerComponent) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *ServerComponent) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

// Health reports whether the server has been built.
func (sc *ServerComponent) Health(ctx context.Context) component.Health {
	if sc.server.httpServer == nil {
		return component.Unhealthy(componentName, "not initialized")
	}
	return component.Healthy(componentName)
}

// Describe returns infrastructure summary info for the bootstrap display.
func (sc *ServerComponent) Describe() component.Description {
	cfg := sc.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d max_body=%s", cfg.Host, cfg.Port, cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}

// Routes lists the engine's routes for the startup summary: API routes
// first, then the operational endpoints marked with a gear.
func (sc *ServerComponent) Routes() []component.Route {
	info := sc.server.engine.Routes()
	sort.SliceStable(info, func(i, j int) bool {
		a, b := info[i], info[j]
		if systemPaths[a.Path] != systemPaths[b.Path] {
			return !systemPaths[a.Path]
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return methodRank[a.Method] < methodRank[b.Method]
	})

	out := make([]component.Route, len(info))
	for i, r := range info {
		name := formatHandlerName(r.Handler)
		if systemPaths[r.Path] {
			name += " ⚙️"
		}
		out[i] = component.Route{Method: r.Method, Path: r.Path, Handler: name}
	}
	return out
}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

// formatHandlerName shortens a runtime function name:
//
//	github.com/kbukum/voicemap/api.(*Handler).Upload-fm  ->  Handler.Upload
//	.../server/endpoint.Health.func1                     ->  health
func formatHandlerName(full string) string {
	name := full[strings.LastIndex(full, "/")+1:]
	name = strings.TrimSuffix(name, "-fm")
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if strings.HasPrefix(parts[len(parts)-1], "func") {
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
