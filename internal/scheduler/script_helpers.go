package scheduler

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
)

// readFileLines opens a file and returns all its lines.
func readFileLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	return lines, nil
}

// stripDirectiveComment cuts a trailing " # comment" from a directive.
func stripDirectiveComment(s string) string {
	if i := strings.Index(s, " #"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// removeDependency drops --dependency and -d options in both the
// "--dependency=x" and "--dependency x" forms.
func removeDependency(args []string) []string {
	return options.RemoveOption(args, "--dependency", "-d")
}

// flagValue extracts the value of a flag given as "prefix=value" or as
// "prefix value" in two consecutive tokens, trying each prefix in order.
// Returns ("", false) if no prefix matches.
func flagValue(args []string, prefixes ...string) (string, bool) {
	for i, a := range args {
		for _, prefix := range prefixes {
			if v, ok := strings.CutPrefix(a, prefix+"="); ok {
				return v, true
			}
			if a == prefix && i+1 < len(args) {
				return args[i+1], true
			}
		}
	}
	return "", false
}

// Dependency returns the dependency expression in args, if any.
func Dependency(args []string) (string, bool) {
	return flagValue(args, "--dependency", "-d")
}

// canonicalVersion turns a Slurm version such as "23.02.6" or "17.11" into
// the semver form "v23.2.6". Leading zeros are dropped and suffixes such as
// "-1" are ignored.
func canonicalVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+ "); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return ""
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	for i, p := range parts {
		if p == "" {
			return ""
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return ""
			}
		}
		p = strings.TrimLeft(p, "0")
		if p == "" {
			p = "0"
		}
		parts[i] = p
	}
	return "v" + strings.Join(parts, ".")
}
