package domain

import "strings"

type Platform string

const (
	PlatformGeneral   Platform = "general"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformVideo     Platform = "video"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"

	// PlatformAll asks the runner for one pipeline per platform.
	PlatformAll Platform = "all"
)

// AllPlatforms lists the concrete platforms in their canonical order.
var AllPlatforms = []Platform{
	PlatformGeneral,
	PlatformInstagram,
	PlatformYouTube,
	PlatformVideo,
	PlatformTikTok,
	PlatformFacebook,
}

func ParsePlatform(s string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(s)))
}

func (p Platform) Known() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// OrGeneral maps unknown or empty tags to the general platform.
func (p Platform) OrGeneral() Platform {
	if p.Known() {
		return p
	}
	return PlatformGeneral
}

func (p Platform) String() string {
	return string(p)
}
