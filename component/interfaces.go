package component

import "context"

// HealthStatus is the coarse state a component reports.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the /health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports name as working.
func Healthy(name string) Health {
	return Health{Name: name, Status: StatusHealthy}
}

// Degraded reports name as usable with reduced function.
func Degraded(name, message string) Health {
	return Health{Name: name, Status: StatusDegraded, Message: message}
}

// Unhealthy reports name as unusable.
func Unhealthy(name, message string) Health {
	return Health{Name: name, Status: StatusUnhealthy, Message: message}
}

// Component is a piece of infrastructure with a start/stop lifecycle.
type Component interface {
	// Name identifies the component in the registry and in health reports.
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	// Name is the display name. Empty uses the component's Name().
	Name string
	// Type is a short category such as "server" or "storage".
	Type string
	// Details is free text, e.g. "0.0.0.0:5000 max_body=200MB".
	Details string
	// Port is the listening port, or 0.
	Port int
}

// Describable components appear in the infrastructure section of the
// startup summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route listed in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider components list their HTTP routes in the startup summary.
type RouteProvider interface {
	Routes() []Route
}
