package roster

// The data file holds one employee per line as
//
//	name,position,salary
//
// There is no quoting or escaping, so a comma inside a name or position
// cannot be represented. Lines that do not have exactly three fields or whose
// salary is not a number are ignored on load.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

const fieldSeparator = ","

// DefaultFile is the data file used when none is configured.
const DefaultFile = "employees.txt"

// Load reads the roster from path. A missing file is an empty roster.
func Load(path string, logger *slog.Logger) ([]Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Employee{}, nil
		}
		return nil, fmt.Errorf("could not open data file: %w", err)
	}
	defer f.Close()
	return Decode(f, logger)
}

// Decode parses roster lines from r, skipping malformed lines. Lines may be
// of any length.
func Decode(r io.Reader, logger *slog.Logger) ([]Employee, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	employees := []Employee{}
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("data file read error at line %d: %w", lineNo+1, err)
		}
		if line == "" && err != nil {
			break
		}
		lineNo++
		e, ok := parseLine(strings.TrimRight(line, "\r\n"))
		if !ok {
			logger.Debug("skipping malformed line", "line", lineNo)
		} else {
			employees = append(employees, e)
		}
		if err != nil {
			break
		}
	}
	return employees, nil
}

// parseLine converts one data file line, reporting false if it is unusable.
func parseLine(line string) (Employee, bool) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) != 3 {
		return Employee{}, false
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || math.IsNaN(salary) || math.IsInf(salary, 0) {
		return Employee{}, false
	}
	return Employee{
		Name:     strings.TrimSpace(parts[0]),
		Position: strings.TrimSpace(parts[1]),
		Salary:   salary,
	}, true
}

// Encode writes employees to w in data file format.
func Encode(w io.Writer, employees []Employee) error {
	bw := bufio.NewWriter(w)
	for _, e := range employees {
		line := strings.Join([]string{e.Name, e.Position, e.SalaryString()}, fieldSeparator)
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save overwrites path with employees.
func Save(path string, employees []Employee) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create data file: %w", err)
	}
	if err := Encode(f, employees); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write data file %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close data file %q: %w", path, err)
	}
	return nil
}
