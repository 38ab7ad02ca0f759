package request

import "strings"

const (
	ClientWeb    = "web"
	ClientMobile = "mobile"
)

// ResolveClientType memutuskan tipe client dari header eksplisit dulu,
// baru fallback ke User-Agent.
func ResolveClientType(clientHeader, userAgent string) string {
	switch strings.ToLower(strings.TrimSpace(clientHeader)) {
	case ClientWeb:
		return ClientWeb
	case ClientMobile:
		return ClientMobile
	}

	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "okhttp") || strings.Contains(ua, "dart") {
		return ClientMobile
	}
	return ClientWeb
}

func IsWebClient(clientType string) bool {
	return clientType == ClientWeb
}
