package ini

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// sectionRe matches a section header; blanks inside the brackets are dropped.
var sectionRe = regexp.MustCompile(`^\[ *([^]]+?) *\]`)

// Parse reads an INI document from r. filename is only used in errors.
func Parse(r io.Reader, filename string) (*Document, error) {
	doc := NewDocument()
	doc.Path = filename

	var (
		cur       *Section
		lastKey   string
		keyIndent int
		lineNo    int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			lastKey = ""
			continue
		}
		if trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}

		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

		// Indented line after an option continues its value.
		if cur != nil && lastKey != "" && indent > keyIndent {
			prev, _ := cur.Get(lastKey)
			cur.values[lastKey] = prev + "\n" + trimmed
			continue
		}

		if trimmed[0] == '[' {
			m := sectionRe.FindStringSubmatch(trimmed)
			if m == nil {
				reason := "unterminated section header"
				if strings.Contains(trimmed, "]") {
					reason = "empty section header"
				}
				return nil, NewParseError(filename, lineNo, trimmed, reason)
			}
			name := NormalizeSection(m[1])
			if _, dup := doc.index[name]; dup {
				return nil, NewParseError(filename, lineNo, trimmed,
					fmt.Sprintf("duplicate section [%s]", name))
			}
			cur = doc.addSection(name)
			lastKey = ""
			continue
		}

		if cur == nil {
			return nil, NewParseError(filename, lineNo, trimmed, "option outside of any section")
		}

		idx := strings.IndexAny(trimmed, "=:")
		if idx < 0 {
			return nil, NewParseError(filename, lineNo, trimmed, "expected 'name = value'")
		}
		key := strings.TrimRight(trimmed[:idx], " \t")
		if key == "" {
			return nil, NewParseError(filename, lineNo, trimmed, "empty option name")
		}
		value := strings.TrimSpace(trimmed[idx+1:])

		if _, dup := cur.values[key]; dup {
			return nil, NewParseError(filename, lineNo, trimmed,
				fmt.Sprintf("duplicate option %q in section [%s] (first set on line %d)",
					key, cur.Name, cur.Line(key)))
		}
		cur.set(key, value, lineNo)
		lastKey = key
		keyIndent = indent
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}

	return doc, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}
