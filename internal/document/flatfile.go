package document

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteExpressions writes one expression per line.
func WriteExpressions(w io.Writer, exprs []string) error {
	bw := bufio.NewWriter(w)
	for _, e := range exprs {
		if strings.ContainsAny(e, "\r\n") {
			return fmt.Errorf("write expressions: %q spans lines", e)
		}
		if _, err := bw.WriteString(e + "\n"); err != nil {
			return fmt.Errorf("write expressions: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write expressions: %w", err)
	}
	return nil
}

// ReadExpressions reads the format written by WriteExpressions. Blank
// lines are skipped and CRLF line endings are accepted.
func ReadExpressions(r io.Reader) ([]string, error) {
	var exprs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		exprs = append(exprs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read expressions: %w", err)
	}
	return exprs, nil
}

// FormatExpressions returns the flat-file encoding of exprs.
func FormatExpressions(exprs []string) (string, error) {
	var sb strings.Builder
	if err := WriteExpressions(&sb, exprs); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParseExpressions decodes a flat-file string.
func ParseExpressions(s string) ([]string, error) {
	return ReadExpressions(strings.NewReader(s))
}
