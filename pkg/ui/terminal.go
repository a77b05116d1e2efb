package ui

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
)

var (
	profileOnce sync.Once
	profile     termenv.Profile
)

// ColorProfile returns the detected terminal color capability, honoring
// NO_COLOR and piped output. Detection runs once.
func ColorProfile() termenv.Profile {
	profileOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			profile = termenv.Ascii
			return
		}
		profile = termenv.EnvColorProfile()
	})
	return profile
}

// ColorEnabled reports whether styled output should carry color.
func ColorEnabled() bool {
	return ColorProfile() != termenv.Ascii
}
