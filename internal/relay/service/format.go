package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errDanglingPercent = errors.New("incomplete format")

// FormatNamed substitutes %(name)s placeholders with vars. It understands the
// "-" flag, a width and a .precision counted in characters, and %% for a
// literal percent sign. A placeholder naming a missing variable, a conversion
// other than s, or a positional directive is an error.
func FormatNamed(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(tmpl) {
			return "", errDanglingPercent
		}
		if tmpl[i] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if tmpl[i] != '(' {
			return "", fmt.Errorf("positional directive at offset %d: only named placeholders are supported", i-1)
		}
		end := strings.IndexByte(tmpl[i:], ')')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder at offset %d", i-1)
		}
		key := tmpl[i+1 : i+end]
		i += end + 1

		leftAlign := false
		for i < len(tmpl) && strings.IndexByte("-+ #0", tmpl[i]) >= 0 {
			if tmpl[i] == '-' {
				leftAlign = true
			}
			i++
		}
		var width int
		width, i = readInt(tmpl, i)
		precision := -1
		if i < len(tmpl) && tmpl[i] == '.' {
			precision, i = readInt(tmpl, i+1)
		}
		if i >= len(tmpl) {
			return "", errDanglingPercent
		}
		conv := tmpl[i]
		i++
		if conv != 's' {
			return "", fmt.Errorf("unsupported conversion %%%c for %q", conv, key)
		}
		val, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("missing variable %q", key)
		}
		b.WriteString(pad(truncateRunes(val, precision), width, leftAlign))
	}
	return b.String(), nil
}

func readInt(s string, i int) (int, int) {
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if start == i {
		return 0, i
	}
	n, _ := strconv.Atoi(s[start:i])
	return n, i
}

func truncateRunes(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func pad(s string, width int, left bool) string {
	n := utf8.RuneCountInString(s)
	if width <= n {
		return s
	}
	fill := strings.Repeat(" ", width-n)
	if left {
		return s + fill
	}
	return fill + s
}
