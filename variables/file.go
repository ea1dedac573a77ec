package variables

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileEntry is one name = value line of a variables file.
type FileEntry struct {
	Name  string
	Value string
}

// ReadFile reads a variables file. Blank lines and lines starting with #
// are skipped. Returns no entries if the file does not exist.
func ReadFile(path string) ([]FileEntry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return entries, nil
}

// Parse reads name = value lines. Only the first = separates name and
// value, so values may contain =. A later line for the same name replaces
// the earlier value.
func Parse(r io.Reader) ([]FileEntry, error) {
	var entries []FileEntry
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("%d: expected name = value", lineNum)
		}

		if i, seen := index[name]; seen {
			entries[i].Value = value
			continue
		}
		index[name] = len(entries)
		entries = append(entries, FileEntry{Name: name, Value: value})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading variables: %w", err)
	}
	return entries, nil
}

// WriteFile writes vars to path in the format ReadFile accepts.
func WriteFile(path string, vars []Variable) error {
	if err := os.WriteFile(path, []byte(Format(vars)), 0644); err != nil {
		return fmt.Errorf("writing variables file: %w", err)
	}
	return nil
}

// Format renders vars as a variables file.
func Format(vars []Variable) string {
	var sb strings.Builder
	sb.WriteString("# hatchtest variables\n")
	for _, v := range vars {
		fmt.Fprintf(&sb, "%s = %s\n", v.Name, v.Value)
	}
	return sb.String()
}
