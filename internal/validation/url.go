package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL       = errors.New("URL cannot be empty")
	ErrURLTooLong     = errors.New("URL too long")
	ErrInvalidScheme  = errors.New("URL must use http or https protocol")
	ErrMissingHost    = errors.New("URL must have a valid hostname")
	ErrLocalhost      = errors.New("localhost URLs are not permitted")
	ErrPrivateAddress = errors.New("private IP addresses are not permitted")
)

// EndpointValidator checks the users endpoint before any request is issued.
type EndpointValidator struct {
	// AllowLocalhost permits loopback hosts (local mock servers)
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC1918 and link-local addresses
	AllowPrivateIPs bool
	// MaxLength is the maximum accepted URL length
	MaxLength int
}

// NewEndpointValidator creates a validator with secure defaults
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// NewPermissiveEndpointValidator allows local development endpoints
func NewPermissiveEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates an endpoint URL and returns the normalized version.
// A missing scheme defaults to https.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrEmptyURL
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("%w (max %d characters)", ErrURLTooLong, v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", ErrInvalidScheme
	}
	if parsedURL.Hostname() == "" {
		return "", ErrMissingHost
	}

	if err := v.validateHost(parsedURL.Hostname()); err != nil {
		return "", err
	}

	return parsedURL.String(), nil
}

func (v *EndpointValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return ErrLocalhost
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return ErrPrivateAddress
		}
	}

	switch hostname {
	case "0.0.0.0", "255.255.255.255":
		return fmt.Errorf("unroutable host %s", hostname)
	}

	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
