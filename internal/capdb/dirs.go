package capdb

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirs lists the directories compiled terminfo descriptions are
// searched in, in lookup order.
func DefaultDirs() []string {
	var dirs []string
	if d := os.Getenv("TERMINFO"); d != "" {
		dirs = append(dirs, d)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".terminfo"))
	}
	for _, d := range strings.Split(os.Getenv("TERMINFO_DIRS"), ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return append(dirs,
		"/etc/terminfo",
		"/lib/terminfo",
		"/usr/share/terminfo",
		"/usr/lib/terminfo",
		"/usr/share/lib/terminfo",
	)
}

// TermName picks the terminal type: the explicit name, then $TERM, then dumb.
func TermName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if t := os.Getenv("TERM"); t != "" {
		return t
	}
	return "dumb"
}
