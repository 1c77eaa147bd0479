// Package device extracts browser and operating system names from a
// User-Agent string using a fixed, ordered rule list. First match wins;
// anything unrecognized degrades to an "Unknown" value rather than an error.
package device

import "strings"

const (
	UnknownBrowser = "Unknown Browser"
	UnknownOS      = "Unknown OS"
)

// Info holds the parsed device context of one request.
type Info struct {
	Browser         string
	OperatingSystem string
}

// Parse extracts browser and OS from a raw User-Agent header value.
func Parse(userAgent string) Info {
	return Info{
		Browser:         browserFor(userAgent),
		OperatingSystem: osFor(userAgent),
	}
}

// browserFor matches the most specific tokens first: Chrome-family agents
// also advertise Safari, and Edge also advertises Chrome.
func browserFor(ua string) string {
	switch {
	case strings.Contains(ua, "Edg"):
		return "Microsoft Edge"
	case strings.Contains(ua, "Chrome"):
		return "Google Chrome"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Firefox"):
		return "Mozilla Firefox"
	case strings.Contains(ua, "MSIE"), strings.Contains(ua, "Trident"):
		return "Internet Explorer"
	case strings.Contains(ua, "OPR"), strings.Contains(ua, "Opera"):
		return "Opera"
	default:
		return UnknownBrowser
	}
}

// osRule pairs an ordered list of substring probes with an OS name.
type osRule struct {
	name   string
	tokens []string
}

// Order matters: Windows 11 agents still carry "Windows NT 10.0", and iOS
// devices must be checked before the generic Mac token.
var osRules = []osRule{
	{"Windows 11", []string{"Windows NT 10.0; Win64; x64; 11"}},
	{"Windows 10", []string{"Windows NT 10.0"}},
	{"iOS", []string{"iPhone", "iPad"}},
	{"Mac OS", []string{"Macintosh", "Mac OS X"}},
	{"Android", []string{"Android"}},
	{"Linux", []string{"Linux"}},
}

func osFor(ua string) string {
	for _, rule := range osRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.name
			}
		}
	}
	return UnknownOS
}
