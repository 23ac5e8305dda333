package utils

import (
	"github.com/mssola/user_agent"
)

// DeviceInfo is a parsed summary of a client user agent, attached to audit
// event detail for traceability.
type DeviceInfo struct {
	Browser  string `json:"browser"`
	Version  string `json:"version"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Mobile   bool   `json:"mobile"`
	Bot      bool   `json:"bot"`
}

// ParseUserAgent extracts device information from a user agent string
func ParseUserAgent(uaString string) DeviceInfo {
	ua := user_agent.New(uaString)
	browser, version := ua.Browser()

	return DeviceInfo{
		Browser:  browser,
		Version:  version,
		OS:       ua.OS(),
		Platform: ua.Platform(),
		Mobile:   ua.Mobile(),
		Bot:      ua.Bot(),
	}
}
