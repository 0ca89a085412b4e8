package reconcile

import (
	"strings"

	"github.com/NeiruBugz/play-later/internal/models"
)

// platformKeywords is checked in priority order: a title like
// "Nintendo Switch (digital)" must classify as nintendo before the
// generic keyword lists get a chance.
var platformKeywords = []struct {
	platform models.Platform
	keywords []string
}{
	{models.PlatformNintendo, []string{"nintendo", "switch", "wii", "3ds", "ds", "game boy"}},
	{models.PlatformPC, []string{"pc", "windows", "linux", "mac", "steam"}},
	{models.PlatformPlayStation, []string{"playstation", "ps4", "ps5", "psvr", "vita"}},
	{models.PlatformXbox, []string{"xbox", "series x", "series s"}},
}

// legacyConsoles catches exact console names that carry no brand
// keyword.
var legacyConsoles = map[string]models.Platform{
	"wii u":            models.PlatformNintendo,
	"game boy advance": models.PlatformNintendo,
	"game boy color":   models.PlatformNintendo,
	"game & watch":     models.PlatformNintendo,
	"nes":              models.PlatformNintendo,
	"snes":             models.PlatformNintendo,
}

// ClassifyPlatform maps a raw platform string from any source into the
// closed platform set. Classification is keyword-substring based over
// the case-folded input; unrecognized strings default to pc, the
// single documented fallback given the PC-first nature of storefront
// imports. PlatformOther stays valid for manual entries but
// is never produced here.
func ClassifyPlatform(raw string) models.Platform {
	lower := strings.ToLower(strings.TrimSpace(raw))

	for _, category := range platformKeywords {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return category.platform
			}
		}
	}

	if platform, ok := legacyConsoles[lower]; ok {
		return platform
	}

	return models.PlatformPC
}
