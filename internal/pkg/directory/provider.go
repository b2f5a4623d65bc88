package directory

import (
	"github.com/go-arcade/ideaflow/pkg/cache"
	"github.com/google/wire"
)

// ProviderSet 提供 directory 相关的依赖
var ProviderSet = wire.NewSet(
	ProvideDirectory,
	ProvideNameResolver,
)

func ProvideDirectory(conf Conf) Directory {
	return NewClient(conf)
}

func ProvideNameResolver(dir Directory, c cache.ICache, conf Conf) *NameResolver {
	return NewNameResolver(dir, c, conf.NameCacheTTL)
}
