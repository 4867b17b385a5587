package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`

const downTemplate = `-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}

`

var (
	upFile   = template.Must(template.New("up").Parse(upTemplate))
	downFile = template.Must(template.New("down").Parse(downTemplate))
)

// versionWidth matches the zero padding of the shipped migrations (000001_...)
const versionWidth = 6

// File is one migration pair on disk
type File struct {
	Version     uint
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Info is a migration found in a source
type Info struct {
	Version uint
	Name    string
	HasDown bool
}

// Create writes the next sequential up/down pair into dir
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, version, slug)
	f := &File{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(f.UpPath, upFile, f); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(f.DownPath, downFile, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return f, nil
}

func writeTemplate(path string, tmpl *template.Template, data *File) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(out, data); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// parseFileName splits "000002_add_index.up.sql" into its parts
func parseFileName(name string) (version uint, slug string, direction string, ok bool) {
	for _, dir := range []string{"up", "down"} {
		suffix := "." + dir + ".sql"
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		prefix, rest, found := strings.Cut(strings.TrimSuffix(name, suffix), "_")
		if !found {
			return 0, "", "", false
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			return 0, "", "", false
		}
		return uint(v), rest, dir, true
	}
	return 0, "", "", false
}

// List returns the migrations in fsys ordered by version. Files that do not
// follow the VERSION_name.(up|down).sql pattern are ignored.
func List(fsys fs.FS) ([]Info, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[uint]*Info)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, slug, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		info, seen := byVersion[version]
		if !seen {
			info = &Info{Version: version, Name: slug}
			byVersion[version] = info
		}
		if direction == "down" {
			info.HasDown = true
		}
	}

	result := make([]Info, 0, len(byVersion))
	for _, info := range byVersion {
		result = append(result, *info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}
