package bootstrap

import (
	"github.com/kbukum/voicemap/config"
)

// Config constrains the configuration type of an App. Embedding
// config.ServiceConfig provides GetServiceConfig; the embedding type
// overrides ApplyDefaults and Validate to cover its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
