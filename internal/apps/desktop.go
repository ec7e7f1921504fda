package apps

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DesktopSource scans freedesktop .desktop manifests and $PATH
// executables for launchable applications.
type DesktopSource struct {
	// ApplicationDirs are the directories scanned for .desktop files.
	// Empty means the standard XDG locations plus the user dir.
	ApplicationDirs []string

	// PathVar overrides $PATH for executable scanning. Empty means the
	// process environment.
	PathVar string

	// SkipPathScan disables the $PATH executable scan.
	SkipPathScan bool
}

// NewDesktopSource returns a source scanning the standard locations.
func NewDesktopSource() *DesktopSource {
	return &DesktopSource{}
}

// Records implements Source.
func (s *DesktopSource) Records() ([]Record, error) {
	var records []Record

	for _, dir := range s.applicationDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // missing or unreadable dirs are not an error
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if rec, ok := parseDesktopFile(path); ok {
				records = append(records, rec)
			}
		}
	}

	if !s.SkipPathScan {
		records = append(records, s.scanPath(knownExecs(records))...)
	}

	return records, nil
}

func (s *DesktopSource) applicationDirs() []string {
	if len(s.ApplicationDirs) > 0 {
		return s.ApplicationDirs
	}

	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return dirs
}

// parseDesktopFile reads the Name, Exec, Terminal, and NoDisplay keys of
// the [Desktop Entry] section. Hidden (NoDisplay) and incomplete entries
// are rejected.
func parseDesktopFile(path string) (Record, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, false
	}
	defer f.Close()

	var (
		name, exec string
		terminal   bool
		inEntry    bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			inEntry = line == "[Desktop Entry]"
			continue
		case !inEntry:
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if name == "" {
				name = strings.TrimSpace(value)
			}
		case "Exec":
			if exec == "" {
				exec = strings.TrimSpace(value)
			}
		case "Terminal":
			terminal = strings.TrimSpace(value) == "true"
		case "NoDisplay":
			if strings.TrimSpace(value) == "true" {
				return Record{}, false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, false
	}

	if name == "" || exec == "" {
		return Record{}, false
	}

	return Record{
		Name:     name,
		Exec:     exec,
		Terminal: terminal,
		Origin:   path,
	}, true
}

// knownExecs collects the binary basenames referenced by desktop entries
// so the $PATH scan does not duplicate them under a second name.
func knownExecs(records []Record) map[string]bool {
	known := make(map[string]bool, len(records))
	for _, rec := range records {
		fields := strings.Fields(rec.Exec)
		if len(fields) == 0 {
			continue
		}
		known[filepath.Base(fields[0])] = true
	}
	return known
}

// scanPath walks the $PATH directories for executables. PATH entries are
// command-line programs, so they default to terminal launches.
func (s *DesktopSource) scanPath(known map[string]bool) []Record {
	pathVar := s.PathVar
	if pathVar == "" {
		pathVar = os.Getenv("PATH")
	}

	var records []Record
	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(pathVar) {
		if dir == "" || skipPathDir(dir) {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.ContainsRune(name, '.') || known[name] || seen[name] {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
				continue
			}
			seen[name] = true
			records = append(records, Record{
				Name:     name,
				Exec:     name,
				Terminal: true,
				Origin:   filepath.Join(dir, name),
			})
		}
	}

	return records
}

// skipPathDir filters out $PATH directories that hold system or support
// binaries a launcher should not offer.
func skipPathDir(dir string) bool {
	return strings.Contains(dir, "/sbin") ||
		strings.Contains(dir, "/games") ||
		strings.Contains(dir, "/lib")
}
