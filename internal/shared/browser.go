package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// BrowserEnv names a command that replaces the platform opener, e.g. "firefox --new-window".
const BrowserEnv = "SPOTLENS_BROWSER"

// OpenBrowser starts a browser on authURL and returns without waiting for it.
func OpenBrowser(authURL string) error {
	name, args, err := browserCommand(runtime.GOOS, os.Getenv(BrowserEnv), authURL)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser with %s: %w", name, err)
	}
	return nil
}

// browserCommand picks the opener for goos. The authorize URL carries several '&', so
// Windows goes through rundll32 rather than cmd, which would split it.
func browserCommand(goos, override, authURL string) (string, []string, error) {
	if fields := strings.Fields(override); len(fields) > 0 {
		return fields[0], append(fields[1:], authURL), nil
	}

	switch goos {
	case "darwin":
		return "open", []string{authURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{authURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", authURL}, nil
	default:
		return "", nil, fmt.Errorf("%w: no browser opener for %s, set %s", ErrUnsupportedPlatform, goos, BrowserEnv)
	}
}
