package cte

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"audit-service/internal/core/normalize"

	"golang.org/x/text/encoding/charmap"
)

// accessKeyLength is the length of a CT-e access key.
const accessKeyLength = 44

// ParseStatusList reads a status export (one document per line, fields split
// by ';', ',' or tab) and returns the keys whose status is cancelled or denied.
// Lines without a 44-digit key, such as headers, are ignored.
func ParseStatusList(r io.Reader) (map[string]bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		if data, err = charmap.ISO8859_1.NewDecoder().Bytes(data); err != nil {
			return nil, err
		}
	}

	excluded := map[string]bool{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ';' || r == ',' || r == '\t'
		})
		key, rest := splitKey(fields)
		if key == "" {
			continue
		}
		status := strings.ToLower(normalize.RemoveAccents(strings.Join(rest, " ")))
		if strings.Contains(status, "cancel") || strings.Contains(status, "deneg") {
			excluded[key] = true
		}
	}
	return excluded, scanner.Err()
}

// splitKey finds the first field holding an access key and returns it with the other fields.
func splitKey(fields []string) (string, []string) {
	for i, f := range fields {
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if len(digits) == accessKeyLength {
			rest := append(append([]string{}, fields[:i]...), fields[i+1:]...)
			return digits, rest
		}
	}
	return "", nil
}
