package http

import (
	"net/url"
	"time"

	"github.com/go-arcade/ideaflow/pkg/trace/inject"
	"github.com/go-resty/resty/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/11/6 20:39
 * @file: http_client.go
 * @description: http client
 */

// ClientConf configures an outbound service client.
type ClientConf struct {
	// Name labels the client spans, defaults to the BaseURL host
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"baseUrl"`
	// Timeout in milliseconds for a single request
	Timeout int `mapstructure:"timeout"`
}

// NewClient returns a resty client for a downstream service. Retries are
// left to callers so each can decide what is safe to repeat. Every request
// runs in a client span and carries the trace context downstream.
func NewClient(conf ClientConf) *resty.Client {
	timeout := time.Duration(conf.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	client := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ideaflow")
	return inject.InstrumentResty(client, conf.peer())
}

func (c ClientConf) peer() string {
	if c.Name != "" {
		return c.Name
	}
	if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "downstream"
}
