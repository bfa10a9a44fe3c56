package gmx

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrNoNsteps   = errors.New("no nsteps entry")
	ErrNoLastTime = errors.New("no time stamp found")
	ErrNoBox      = errors.New("no box vector found")
)

// FileError reports a line of a Gromacs file that could not be understood.
type FileError struct {
	Path   string
	Line   int
	Reason string
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// NstepsFromMDP reads the number of integration steps from an .mdp file.
// The last "nsteps" line wins and a trailing ";" comment is ignored.
func NstepsFromMDP(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var last string
	lastNo, lineNo := 0, 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		if line := strings.TrimSpace(scanner.Text()); isNstepsLine(line) {
			last, lastNo = line, lineNo
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}
	if lastNo == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrNoNsteps)
	}

	_, value, ok := strings.Cut(last, "=")
	if !ok {
		return 0, &FileError{Path: path, Line: lastNo, Reason: "nsteps has no '='"}
	}
	value, _, _ = strings.Cut(value, ";")
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &FileError{Path: path, Line: lastNo, Reason: fmt.Sprintf("invalid nsteps %q", strings.TrimSpace(value))}
	}
	return n, nil
}

func isNstepsLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "nsteps")
	return ok && (rest == "" || strings.ContainsRune(" \t=", rune(rest[0])))
}

// BoxFromGRO returns the box lengths (nm) from the last line of a .gro
// file. Triclinic boxes list nine values of which the first three are the
// diagonal.
func BoxFromGRO(path string) ([3]float64, error) {
	var box [3]float64
	f, err := os.Open(path)
	if err != nil {
		return box, err
	}
	defer f.Close()

	var last string
	lastNo, lineNo := 0, 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last, lastNo = line, lineNo
		}
	}
	if err := scanner.Err(); err != nil {
		return box, fmt.Errorf("error reading %s: %w", path, err)
	}
	fields := strings.Fields(last)
	if len(fields) < 3 {
		return box, fmt.Errorf("%s: %w", path, ErrNoBox)
	}
	for i := range box {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return box, &FileError{Path: path, Line: lastNo, Reason: fmt.Sprintf("invalid box length %q", fields[i])}
		}
		box[i] = v
	}
	return box, nil
}

// NBins is the number of bins of width binwidth needed to cover length.
// Quotients within rounding noise of an integer are not rounded up.
func NBins(length, binwidth float64) (int, error) {
	if binwidth <= 0 {
		return 0, fmt.Errorf("bin width (%g) must be greater than zero", binwidth)
	}
	n := length / binwidth
	if r := math.Round(n); math.Abs(n-r) < 1e-9 {
		return int(r), nil
	}
	return int(math.Ceil(n)), nil
}

// LastTimeFromLog returns the time (ps) of the last step written to a
// Gromacs .log file. Files ending in .gz or .bz2 are decompressed on the
// fly.
func LastTimeFromLog(path string) (float64, error) {
	r, err := openText(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var (
		last     string
		found    bool
		inHeader bool
		lineNo   int
		lastNo   int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if inHeader {
			inHeader = false
			if len(fields) >= 2 {
				last, lastNo, found = fields[1], lineNo, true
			}
			continue
		}
		inHeader = len(fields) == 2 && fields[0] == "Step" && fields[1] == "Time"
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}
	if !found {
		return 0, fmt.Errorf("%s: %w", path, ErrNoLastTime)
	}
	t, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, &FileError{Path: path, Line: lastNo, Reason: fmt.Sprintf("invalid time %q", last)}
	}
	return t, nil
}
