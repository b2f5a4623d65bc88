package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_SentinelOptions(t *testing.T) {
	r := Redis{
		Mode:        "sentinel",
		Address:     "s1:26379, s2:26379",
		MasterName:  "ideaflow",
		DialTimeout: 3 * time.Second,
		UseTLS:      true,
	}
	opts, err := r.failoverOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"s1:26379", "s2:26379"}, opts.SentinelAddrs)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.NotNil(t, opts.TLSConfig)

	_, err = Redis{Mode: "sentinel", Address: "s1:26379"}.failoverOptions()
	assert.Error(t, err)
}

func TestNewRedis_IllegalMode(t *testing.T) {
	_, err := NewRedis(Redis{Mode: "cluster", Address: "localhost:6379"})
	assert.ErrorContains(t, err, "illegal redis mode")
}

func TestRedis_Enabled(t *testing.T) {
	assert.False(t, Redis{}.Enabled())
	assert.True(t, Redis{Address: "localhost:6379"}.Enabled())
}
