// Package useragent classifies User-Agent strings into structured device
// information using ordered rule tables. Rule order is a correctness
// requirement, not style: tablet tokens are checked before mobile ones
// (tablet UAs usually carry mobile-like tokens too), Chrome before Edge,
// Safari after Chrome.
package useragent

import (
	"regexp"
	"strings"
)

// Device types reported by Classify.
const (
	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeUnknown = "unknown"
)

// Unknown is the fallback value for browser/OS fields.
const Unknown = "Unknown"

// DeviceInfo represents parsed device information.
type DeviceInfo struct {
	Type           string // desktop, mobile, tablet, unknown
	Browser        string // Chrome, Firefox, Safari, etc.
	BrowserVersion string
	OS             string // Windows, macOS, iOS, Android, etc.
	OSVersion      string
}

// deviceRule maps a UA pattern to a device type. An optional exclude
// pattern vetoes the match (Android tablets carry "android" but no
// "mobile" token).
type deviceRule struct {
	deviceType string
	match      *regexp.Regexp
	exclude    *regexp.Regexp
}

var deviceRules = []deviceRule{
	{TypeTablet, regexp.MustCompile(`ipad|tablet|kindle|silk|playbook`), nil},
	{TypeTablet, regexp.MustCompile(`android`), regexp.MustCompile(`mobile`)},
	{TypeMobile, regexp.MustCompile(`mobi|iphone|ipod|android|blackberry|windows phone|webos|opera mini`), nil},
	{TypeDesktop, regexp.MustCompile(`windows nt|macintosh|x11|linux|cros`), nil},
}

// browserRule maps a UA pattern to a browser name plus a version
// extractor. First match wins.
type browserRule struct {
	name    string
	match   *regexp.Regexp
	exclude *regexp.Regexp
	version *regexp.Regexp // version in first capture group
}

var browserRules = []browserRule{
	{"Chrome", regexp.MustCompile(`chrome|crios`), regexp.MustCompile(`edg`), regexp.MustCompile(`(?:chrome|crios)/([0-9.]+)`)},
	{"Firefox", regexp.MustCompile(`firefox|fxios`), nil, regexp.MustCompile(`(?:firefox|fxios)/([0-9.]+)`)},
	{"Safari", regexp.MustCompile(`safari`), regexp.MustCompile(`chrome|crios`), regexp.MustCompile(`version/([0-9.]+)`)},
	{"Edge", regexp.MustCompile(`edg(?:e|a|ios)?/`), nil, regexp.MustCompile(`edg(?:e|a|ios)?/([0-9.]+)`)},
	{"Internet Explorer", regexp.MustCompile(`trident|msie`), nil, regexp.MustCompile(`(?:msie |rv:)([0-9.]+)`)},
	{"Opera", regexp.MustCompile(`opera|opr/`), nil, regexp.MustCompile(`(?:opr|opera)[/ ]([0-9.]+)`)},
}

// osRule maps a UA pattern to an OS name plus a version extractor.
type osRule struct {
	name    string
	match   *regexp.Regexp
	version *regexp.Regexp // raw version in first capture group
	// normalize rewrites the captured version (marketing names,
	// underscore-separated versions). Optional.
	normalize func(string) string
}

// Windows NT version -> marketing name.
var windowsVersions = map[string]string{
	"10.0": "10",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
	"6.0":  "Vista",
	"5.2":  "XP",
	"5.1":  "XP",
}

var osRules = []osRule{
	{"Windows", regexp.MustCompile(`windows nt`), regexp.MustCompile(`windows nt ([0-9.]+)`), func(v string) string {
		if name, ok := windowsVersions[v]; ok {
			return name
		}
		return v
	}},
	{"macOS", regexp.MustCompile(`macintosh`), regexp.MustCompile(`mac os x ([0-9_.]+)`), dotted},
	{"iOS", regexp.MustCompile(`iphone|ipad|ipod`), regexp.MustCompile(`os ([0-9_]+)`), dotted},
	{"Android", regexp.MustCompile(`android`), regexp.MustCompile(`android ([0-9.]+)`), nil},
	{"Linux", regexp.MustCompile(`linux|x11`), nil, nil},
}

// Linux distributions worth naming over the generic family.
var linuxDistros = []string{"Ubuntu", "Fedora", "Debian"}

// Substrings identifying crawlers, bots and social preview fetchers.
// Matched against the lowercased User-Agent.
var botMarkers = []string{
	"bot", "crawler", "spider", "crawling",
	"facebookexternalhit", "whatsapp", "telegram", "slackbot",
	"skypeuripreview", "pinterest", "embedly", "quora link preview",
	"vkshare", "yandex", "baiduspider", "slurp", "applebot",
}

// Classify parses a User-Agent string into structured device information.
// It is a pure function over the ordered rule tables above.
func Classify(userAgent string) DeviceInfo {
	info := DeviceInfo{
		Type:           TypeUnknown,
		Browser:        Unknown,
		BrowserVersion: Unknown,
		OS:             Unknown,
		OSVersion:      Unknown,
	}
	if userAgent == "" {
		return info
	}

	ua := strings.ToLower(userAgent)

	for _, rule := range deviceRules {
		if rule.match.MatchString(ua) && (rule.exclude == nil || !rule.exclude.MatchString(ua)) {
			info.Type = rule.deviceType
			break
		}
	}

	for _, rule := range browserRules {
		if !rule.match.MatchString(ua) {
			continue
		}
		if rule.exclude != nil && rule.exclude.MatchString(ua) {
			continue
		}
		info.Browser = rule.name
		if m := rule.version.FindStringSubmatch(ua); m != nil {
			info.BrowserVersion = m[1]
		}
		break
	}

	for _, rule := range osRules {
		if !rule.match.MatchString(ua) {
			continue
		}
		info.OS = rule.name
		if rule.version != nil {
			if m := rule.version.FindStringSubmatch(ua); m != nil {
				v := m[1]
				if rule.normalize != nil {
					v = rule.normalize(v)
				}
				info.OSVersion = v
			}
		}
		if rule.name == "Linux" {
			for _, distro := range linuxDistros {
				if strings.Contains(ua, strings.ToLower(distro)) {
					info.OS = distro
					break
				}
			}
		}
		break
	}

	return info
}

// IsBot reports whether the User-Agent belongs to a known crawler,
// bot or social preview fetcher.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// dotted converts underscore-separated versions ("10_15_7") to the
// dotted form ("10.15.7").
func dotted(v string) string {
	return strings.ReplaceAll(v, "_", ".")
}
