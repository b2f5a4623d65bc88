package ideastore

import (
	httpx "github.com/go-arcade/ideaflow/pkg/http"
)

// Conf selects where vote counts are pushed. An empty BaseURL means the
// idea store is served by this process.
type Conf struct {
	httpx.ClientConf `mapstructure:",squash"`
	Push             PushConf `mapstructure:"push"`
}

func (c Conf) Remote() bool {
	return c.BaseURL != ""
}

// ProvideIdeaStore picks the remote store when configured, else local.
func ProvideIdeaStore(conf Conf, local IdeaStore) IdeaStore {
	if conf.Remote() {
		return NewHTTPStore(conf.ClientConf)
	}
	return local
}

func ProvidePusher(store IdeaStore, conf Conf) *Pusher {
	return NewPusher(store, conf.Push)
}
