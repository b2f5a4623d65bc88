package metrics

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewMetricsServer)

// NewMetricsServer builds the server and registers the ideaflow collectors
// on its registry.
func NewMetricsServer(config MetricsConfig) *Server {
	s := NewServer(config)
	RegisterIdeaflowMetrics(s.GetRegistry())
	return s
}
