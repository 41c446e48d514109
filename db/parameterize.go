package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

// ParameterizedSQLTemplate is an sql file with its declared example values
// replaced by sqlx named parameters.
type ParameterizedSQLTemplate struct {
	Body       []byte
	Parameters []string
}

// String provides a printable representation.
func (p ParameterizedSQLTemplate) String() string {
	return fmt.Sprintf("\nParams: %s\nBody:   %s\n", strings.Join(p.Parameters, ", "), string(p.Body))
}

// An sql file declares its inputs as example values in a leading CTE, each
// marked with a trailing `/* @param */` comment:
//
//	WITH variables AS (
//	    SELECT
//	        1 AS SnapshotID           /* @param */
//	        ,'Maria Silva' AS Name    /* @param */
//	)
//
// This keeps the file runnable in the sqlite shell. On load each example
// value is swapped for a named parameter, giving `:SnapshotID AS SnapshotID`.
// The spacing around the marker must be exactly as shown.
var (
	paramValues = []string{
		`(?:[a-zA-Z_]\w*\([^\)]*\))`, // datetime('now')
		`(?:'[^']*')`,                // 'text' or ''
		`(?:-?\d*\.?\d+)`,            // 12, 1.5, -3
		`(?:null)`,
	}

	regexpParam = regexp.MustCompile(fmt.Sprintf(
		`(?P<value>%s)(?P<as>\s+AS\s+)(?P<param>[A-Za-z0-9_]+)(?P<end>\s+/\* @param \*/)`,
		strings.Join(paramValues, "|"),
	))
)

// errNoParameters is returned for a template without any @param markers.
var errNoParameters = errors.New("parameterize: no parameters found")

// parameterize rewrites tpl's @param declarations as named parameters,
// returning the rewritten body and the parameter names in order.
func parameterize(tpl []byte) (*ParameterizedSQLTemplate, error) {
	matches := regexpParam.FindAllSubmatch(tpl, -1)
	if len(matches) == 0 {
		return nil, errNoParameters
	}

	paramIdx := regexpParam.SubexpIndex("param")
	pst := &ParameterizedSQLTemplate{
		Parameters: make([]string, 0, len(matches)),
	}
	for _, m := range matches {
		pst.Parameters = append(pst.Parameters, string(m[paramIdx]))
	}
	pst.Body = regexpParam.ReplaceAll(tpl, []byte(`:${param}${as}${param}`))
	return pst, nil
}

// ParameterizeFile reads filePath from fileFS and parameterizes it.
func ParameterizeFile(fileFS fs.FS, filePath string) (*ParameterizedSQLTemplate, error) {
	fileBytes, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("file read error: %w", err)
	}
	query, err := parameterize(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("query template %q error: %w", filePath, err)
	}
	return query, nil
}
