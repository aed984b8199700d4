package tool

import (
	"net"
	"net/http"
	"time"
)

var (
	DefaultTimeout    = 30 * time.Second
	CommandHttpClient *http.Client
)

func init() {
	CommandHttpClient = NewHTTPClient()
}

// NewHTTPClient creates the client used for command gateway calls.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   DefaultTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

func GetHttpClient() *http.Client {
	return CommandHttpClient
}

// NewHTTPReqWithApplication marks a freshly built request as carrying JSON.
func NewHTTPReqWithApplication(req *http.Request, err error) (*http.Request, error) {
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
