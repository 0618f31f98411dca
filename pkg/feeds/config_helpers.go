package feeds

import "strings"

// ConfigString returns the trimmed string value for key from feed.Config or a fallback.
func ConfigString(f Feed, key, fallback string) string {
	if f.Config != nil {
		if raw, ok := f.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCacheControlKey   = "cache_control"

	defaultAccept = "application/json"
)

// Headers builds the request headers for a feed. userAgent is used when the
// feed does not set its own; Accept defaults to JSON.
func Headers(f Feed, userAgent string) map[string]string {
	headers := make(map[string]string, 4)

	if v := ConfigString(f, ConfigUserAgentKey, userAgent); v != "" {
		headers["User-Agent"] = v
	}
	headers["Accept"] = ConfigString(f, ConfigAcceptKey, defaultAccept)
	if v := ConfigString(f, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}
	if v := ConfigString(f, ConfigCacheControlKey, ""); v != "" {
		headers["Cache-Control"] = v
	}

	return headers
}
