package config

import (
	"net/url"
	"os"
	"sync"
)

const dockerHostGateway = "host.docker.internal"

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. The result is cached.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveDockerHosts points every loopback collaborator address (database,
// redis, renderer, narration endpoint) at the Docker host gateway when the
// server runs inside a container.
func (c *Config) ResolveDockerHosts() {
	if !IsRunningInDocker() {
		return
	}
	c.Database.Host = resolveHost(c.Database.Host)
	c.Redis.Host = resolveHost(c.Redis.Host)
	c.Renderer.URL = resolveURLHost(c.Renderer.URL)
	c.Narration.Endpoint = resolveURLHost(c.Narration.Endpoint)
}

func resolveHost(host string) string {
	if host == "localhost" || host == "127.0.0.1" {
		return dockerHostGateway
	}
	return host
}

func resolveURLHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := resolveHost(u.Hostname())
	if host == u.Hostname() {
		return raw
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	u.Host = host
	return u.String()
}
