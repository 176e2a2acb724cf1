package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/voicemap/component"
)

// Summary prints the startup banner: components, routes and first health.
type Summary struct {
	service string
	version string
	took    time.Duration
	out     io.Writer
}

func NewSummary(service, version string) *Summary {
	return &Summary{service: service, version: version, out: os.Stdout}
}

func (s *Summary) SetStartupDuration(d time.Duration) { s.took = d }

// DisplaySummary writes the banner. A nil registry prints the header only.
func (s *Summary) DisplaySummary(ctx context.Context, registry *component.Registry) {
	fmt.Fprintf(s.out, "\n🚀 %s v%s started in %.2fs\n", s.service, s.version, s.took.Seconds())

	var infra, routes, health []string
	if registry != nil {
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				infra = append(infra, describeLine(ctx, c, d.Describe()))
			}
			if rp, ok := c.(component.RouteProvider); ok {
				for _, r := range rp.Routes() {
					routes = append(routes, fmt.Sprintf("%s%-7s%s %s → %s", methodColor(r.Method), r.Method, colorReset, r.Path, r.Handler))
				}
			}
		}
		for _, h := range registry.HealthAll(ctx) {
			line := fmt.Sprintf("%s %s: %s", healthStatusIcon(h.Status), h.Name, h.Status)
			if h.Message != "" {
				line += " (" + h.Message + ")"
			}
			health = append(health, line)
		}
	}

	if len(infra) == 0 {
		infra = []string{"No components registered"}
	}
	s.section("📊 Infrastructure", infra)
	if len(routes) > 0 {
		s.section(fmt.Sprintf("🌐 Routes (%d)", len(routes)), routes)
	}
	if len(health) > 0 {
		s.section("🏥 Health Check", health)
	}
	fmt.Fprintln(s.out)
}

func describeLine(ctx context.Context, c component.Component, d component.Description) string {
	name := d.Name
	if name == "" {
		name = c.Name()
	}
	details := d.Details
	if d.Port > 0 {
		details += fmt.Sprintf(" (:%d)", d.Port)
	}
	icon := "✅"
	if c.Health(ctx).Status == component.StatusUnhealthy {
		icon = "❌"
	}
	return fmt.Sprintf("%s %s: %s", icon, name, details)
}

func (s *Summary) section(title string, lines []string) {
	fmt.Fprintf(s.out, "\n%s\n", title)
	for i, l := range lines {
		branch := "├──"
		if i == len(lines)-1 {
			branch = "└──"
		}
		fmt.Fprintf(s.out, "   %s %s\n", branch, l)
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	}
	return "❓"
}

const colorReset = "\033[0m"

var methodColors = map[string]string{
	"GET":    "\033[32m",
	"POST":   "\033[33m",
	"PUT":    "\033[34m",
	"PATCH":  "\033[34m",
	"DELETE": "\033[31m",
}

func methodColor(method string) string {
	if c, ok := methodColors[method]; ok {
		return c
	}
	return "\033[37m"
}
