package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Keywords holds the include/exclude terms parsed from a keywords file.
type Keywords struct {
	Include []string
	Exclude []string
}

// LoadKeywords parses a keywords file. A bare line is an include term, a line
// prefixed with '!' is an exclude term, and '#'-prefixed or blank lines are
// ignored.
func LoadKeywords(path string) (*Keywords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	kw := &Keywords{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "!"):
			if term := strings.TrimSpace(line[1:]); term != "" {
				kw.Exclude = append(kw.Exclude, term)
			}
		default:
			kw.Include = append(kw.Include, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keywords file %s: %w", path, err)
	}

	return kw, nil
}
