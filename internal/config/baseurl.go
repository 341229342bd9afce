package config

import (
	"fmt"
	"strings"
)

// ProductionAPIURL is the API served for the hosted academy domains.
const ProductionAPIURL = "https://api.rymaacademy.cloud/api"

const academyDomain = "rymaacademy.cloud"

// ResolveBaseURL picks the API base URL: explicit API URL, then backend URL,
// then a heuristic over the app host. Academy hosts map to the production API;
// every other host, localhost included, gets <protocol>://<host>/api.
func (c *APIConfig) ResolveBaseURL() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if u := strings.TrimSpace(c.BackendURL); u != "" {
		return strings.TrimRight(u, "/")
	}

	host := strings.ToLower(strings.TrimSpace(c.AppHost))
	hostname := host
	if i := strings.LastIndex(hostname, ":"); i >= 0 && !strings.Contains(hostname[i:], "]") {
		hostname = hostname[:i]
	}
	if hostname == academyDomain || strings.HasSuffix(hostname, "."+academyDomain) {
		return ProductionAPIURL
	}

	protocol := c.AppProtocol
	if protocol == "" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s/api", protocol, host)
}
