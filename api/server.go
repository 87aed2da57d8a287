// Package api the admin api service of the cookie jar
package api

import (
	"net/http"
	"time"

	"github.com/shiroyk/cookiejar"
	v1 "github.com/shiroyk/cookiejar/api/v1"
)

const (
	// DefaultTimeout the default timeout
	DefaultTimeout = time.Minute
	// DefaultAddress the api default address
	DefaultAddress = "localhost:8080"
)

// Options the api server configuration
type Options struct {
	Token      string        `yaml:"token" env:"COOKIEJAR_API_TOKEN"`
	Address    string        `yaml:"address" env:"COOKIEJAR_API_ADDRESS"`
	Timeout    time.Duration `yaml:"timeout" env:"COOKIEJAR_API_TIMEOUT"`
	RequestLog bool          `yaml:"request-log"`
}

// Server the api service
func Server(jar *cookiejar.Jar, opt Options) *http.Server {
	return &http.Server{
		Addr:              opt.Address,
		Handler:           v1.Routes(jar, opt.Token, opt.Timeout, opt.RequestLog),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
