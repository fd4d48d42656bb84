package annotation

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"framextract/internal/failures"
)

const delimiterHint = "pass an explicit delimiter with --delimiter (tab, comma, semicolon, pipe)"

// detectable lists the delimiters tried when none is supplied, in tie-break
// order.
var detectable = []rune{'\t', ',', ';', '|'}

// Table is a parsed annotation table. Rows always have len(Header) cells.
type Table struct {
	Path      string
	Delimiter rune
	Header    []string
	Rows      [][]string
	// Lines holds the source line number of each row.
	Lines []int
}

// Column returns the index of the named header column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ParseDelimiter converts a user-facing delimiter spelling into a rune. The
// empty string selects auto-detection and returns 0.
func ParseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, failures.Wrap(failures.ErrConfiguration, "annotation", "delimiter", fmt.Sprintf("unsupported delimiter %q", value), nil)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, failures.Wrap(failures.ErrConfiguration, "annotation", "delimiter", fmt.Sprintf("unsupported delimiter %q", value), nil)
	}
	return r, nil
}

// ReadTable opens and parses the table at path. An empty delimiter triggers
// detection from the header line.
func ReadTable(path, delimiter string) (*Table, error) {
	comma, err := ParseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failures.Wrap(failures.ErrNotFound, "annotation", "read table", fmt.Sprintf("annotation table %s does not exist", path), nil)
		}
		return nil, failures.Wrap(failures.ErrParse, "annotation", "read table", path, err)
	}
	table, err := Parse(bytes.NewReader(data), comma)
	if err != nil {
		return nil, err
	}
	table.Path = path
	return table, nil
}

// Parse reads a table from r. A zero comma triggers detection.
func Parse(r io.Reader, comma rune) (*Table, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	if comma == 0 {
		header, err := peekLine(br)
		if err != nil {
			return nil, err
		}
		comma, err = detectDelimiter(header)
		if err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, failures.Wrap(failures.ErrParse, "annotation", "parse", "table is empty", nil)
		}
		return nil, parseError(err)
	}
	table := &Table{Delimiter: comma, Header: make([]string, len(header))}
	for i, h := range header {
		table.Header[i] = strings.TrimSpace(h)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, line)
	}
	return table, nil
}

func peekLine(br *bufio.Reader) (string, error) {
	for size := 512; ; size *= 2 {
		buf, err := br.Peek(size)
		if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
			return string(buf[:idx]), nil
		}
		if err != nil {
			if len(buf) == 0 {
				return "", failures.Wrap(failures.ErrParse, "annotation", "parse", "table is empty", nil)
			}
			return string(buf), nil
		}
	}
}

func detectDelimiter(header string) (rune, error) {
	var best rune
	bestCount, ties := 0, 0
	for _, d := range detectable {
		n := strings.Count(header, string(d))
		switch {
		case n > bestCount:
			best, bestCount, ties = d, n, 0
		case n == bestCount && n > 0:
			ties++
		}
	}
	if bestCount == 0 {
		return 0, failures.Wrap(failures.ErrParse, "annotation", "detect delimiter", "could not detect a delimiter in the header line; "+delimiterHint, nil)
	}
	if ties > 0 {
		return 0, failures.Wrap(failures.ErrParse, "annotation", "detect delimiter", "header line is ambiguous between delimiters; "+delimiterHint, nil)
	}
	return best, nil
}

func parseError(err error) error {
	return failures.Wrap(failures.ErrParse, "annotation", "parse", delimiterHint, err)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
