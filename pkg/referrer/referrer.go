// Package referrer classifies Referer URLs into traffic sources using
// fixed, ordered domain tables (search engines first, then social
// platforms, then mail hosts).
package referrer

import (
	"net/url"
	"strings"
)

// Traffic source types.
const (
	SourceDirect = "direct"
	SourceSearch = "search"
	SourceSocial = "social"
	SourceEmail  = "email"
	SourceOther  = "other"
)

// Info is the classification result for one Referer value.
type Info struct {
	Domain         string `json:"domain"`
	SourceType     string `json:"source_type"`
	SearchEngine   string `json:"search_engine,omitempty"`
	SocialPlatform string `json:"social_platform,omitempty"`
}

// domainRule maps host fragments to a named source. A fragment ending in
// a dot is matched anywhere in the host ("google." covers google.com and
// google.co.uk); otherwise the host must equal the fragment or be a
// subdomain of it.
type domainRule struct {
	name      string
	fragments []string
}

var searchEngines = []domainRule{
	{"Google", []string{"google."}},
	{"Bing", []string{"bing."}},
	{"Yahoo", []string{"yahoo."}},
	{"DuckDuckGo", []string{"duckduckgo."}},
	{"Baidu", []string{"baidu."}},
	{"Yandex", []string{"yandex."}},
	{"Ecosia", []string{"ecosia."}},
}

var socialPlatforms = []domainRule{
	{"Facebook", []string{"facebook.", "fb.com", "fb.me"}},
	{"Twitter", []string{"twitter.", "t.co", "x.com"}},
	{"Instagram", []string{"instagram."}},
	{"LinkedIn", []string{"linkedin.", "lnkd.in"}},
	{"Reddit", []string{"reddit.", "redd.it"}},
	{"Pinterest", []string{"pinterest."}},
	{"TikTok", []string{"tiktok."}},
	{"YouTube", []string{"youtube.", "youtu.be"}},
	{"WhatsApp", []string{"whatsapp."}},
	{"Telegram", []string{"telegram.", "t.me"}},
	{"VK", []string{"vk.com"}},
}

var mailHosts = []string{"mail.", "gmail.", "outlook."}

// Classify maps a Referer URL to its traffic source. An empty referer is
// direct traffic; a malformed one is bucketed as unknown/other.
func Classify(referer string) Info {
	if referer == "" {
		return Info{Domain: "direct", SourceType: SourceDirect}
	}

	u, err := url.Parse(referer)
	if err != nil || u.Hostname() == "" {
		return Info{Domain: "unknown", SourceType: SourceOther}
	}
	host := strings.ToLower(u.Hostname())

	for _, rule := range searchEngines {
		if matches(host, rule) {
			return Info{Domain: host, SourceType: SourceSearch, SearchEngine: rule.name}
		}
	}

	for _, rule := range socialPlatforms {
		if matches(host, rule) {
			return Info{Domain: host, SourceType: SourceSocial, SocialPlatform: rule.name}
		}
	}

	for _, fragment := range mailHosts {
		if strings.Contains(host, fragment) {
			return Info{Domain: host, SourceType: SourceEmail}
		}
	}

	return Info{Domain: host, SourceType: SourceOther}
}

func matches(host string, rule domainRule) bool {
	for _, fragment := range rule.fragments {
		if strings.HasSuffix(fragment, ".") {
			if strings.Contains(host, fragment) {
				return true
			}
			continue
		}
		if host == fragment || strings.HasSuffix(host, "."+fragment) {
			return true
		}
	}
	return false
}
