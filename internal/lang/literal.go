package lang

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Literal decoders. Each receives the full source text of a string literal
// node, quotes and prefixes included, and returns its runtime value. They
// return false for literal forms that are not a fixed piece of text
// (byte strings, f-strings, heredocs, percent literals).

func unquoteJS(raw string) (string, bool) {
	body, ok := stripQuotes(raw, `"'`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x':
			v, n, ok := readHex(body, i, 2, 2)
			if !ok {
				return "", false
			}
			b.WriteRune(v)
			i += n
		case 'u':
			v, n, ok := readJSUnicode(body, i)
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(v) && strings.HasPrefix(body[i:], `\u`) {
				if lo, m, ok := readJSUnicode(body, i+2); ok {
					if r := utf16.DecodeRune(v, lo); r != utf8.RuneError {
						b.WriteRune(r)
						i += 2 + m
						continue
					}
				}
			}
			b.WriteRune(v)
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), true
}

func readJSUnicode(s string, i int) (rune, int, bool) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0, false
		}
		v, n, ok := readHex(s, i+1, 1, 6)
		if !ok || n != end-1 || v > utf8.MaxRune {
			return 0, 0, false
		}
		return v, end + 1, true
	}
	return readHex(s, i, 4, 4)
}

// unquoteCFamily decodes C, C++ and Java string literals. C++ raw strings
// R"d(...)d" are returned verbatim.
func unquoteCFamily(raw string, java bool) (string, bool) {
	q := strings.IndexByte(raw, '"')
	if q < 0 || len(raw) < q+2 || raw[len(raw)-1] != '"' {
		return "", false
	}
	prefix := raw[:q]
	if strings.HasSuffix(prefix, "R") {
		return unquoteCPPRaw(raw[q+1 : len(raw)-1])
	}
	switch prefix {
	case "", "L", "u", "U", "u8":
	default:
		return "", false
	}
	body := raw[q+1 : len(raw)-1]
	if java && strings.HasPrefix(body, `""`) {
		// text block
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'a':
			b.WriteByte('\a')
		case 's':
			if java {
				b.WriteByte(' ')
			} else {
				b.WriteByte('s')
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := readOctal(body, i-1, 3)
			b.WriteByte(byte(v))
			i += n - 1
		case 'x':
			v, n, ok := readHex(body, i, 1, 8)
			if !ok {
				return "", false
			}
			writeCodeUnit(&b, v)
			i += n
		case 'u':
			v, n, ok := readHex(body, i, 4, 4)
			if !ok {
				return "", false
			}
			b.WriteRune(v)
			i += n
		case 'U':
			v, n, ok := readHex(body, i, 8, 8)
			if !ok || v > utf8.MaxRune {
				return "", false
			}
			b.WriteRune(v)
			i += n
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), true
}

func unquoteCPPRaw(inner string) (string, bool) {
	open := strings.IndexByte(inner, '(')
	if open < 0 {
		return "", false
	}
	delim := inner[:open]
	closing := ")" + delim
	if !strings.HasSuffix(inner, closing) || len(inner) < open+1+len(closing) {
		return "", false
	}
	return inner[open+1 : len(inner)-len(closing)], true
}

func unquoteC(raw string) (string, bool)    { return unquoteCFamily(raw, false) }
func unquoteJava(raw string) (string, bool) { return unquoteCFamily(raw, true) }

func unquoteGo(raw string) (string, bool) {
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", false
	}
	return s, true
}

func unquotePython(raw string) (string, bool) {
	p := 0
	for p < len(raw) && raw[p] != '"' && raw[p] != '\'' {
		p++
	}
	prefix := strings.ToLower(raw[:p])
	if strings.ContainsAny(prefix, "bf") || strings.Trim(prefix, "ru") != "" {
		return "", false
	}
	rawMode := strings.Contains(prefix, "r")
	rest := raw[p:]
	var body string
	switch {
	case len(rest) >= 6 && (strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, `'''`)):
		if !strings.HasSuffix(rest, rest[:3]) {
			return "", false
		}
		body = rest[3 : len(rest)-3]
	default:
		var ok bool
		if body, ok = stripQuotes(rest, `"'`); !ok {
			return "", false
		}
	}
	if rawMode {
		return body, true
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			i++
			continue
		}
		e := body[i+1]
		i += 2
		switch e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := readOctal(body, i-1, 3)
			b.WriteRune(v)
			i += n - 1
		case 'x':
			v, n, ok := readHex(body, i, 2, 2)
			if !ok {
				return "", false
			}
			b.WriteRune(v)
			i += n
		case 'u':
			v, n, ok := readHex(body, i, 4, 4)
			if !ok {
				return "", false
			}
			b.WriteRune(v)
			i += n
		case 'U':
			v, n, ok := readHex(body, i, 8, 8)
			if !ok || v > utf8.MaxRune {
				return "", false
			}
			b.WriteRune(v)
			i += n
		default:
			// unknown escapes, \N{...} included, are kept verbatim
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String(), true
}

func unquotePHP(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	switch raw[0] {
	case '\'':
		body, ok := stripQuotes(raw, `'`)
		if !ok {
			return "", false
		}
		return unescapeSingleQuoted(body), true
	case '"':
	default:
		return "", false
	}
	body, ok := stripQuotes(raw, `"`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			i++
			continue
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'v':
			b.WriteByte('\v')
		case 'e':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case '\\', '$', '"':
			b.WriteByte(e)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := readOctal(body, i-1, 3)
			b.WriteByte(byte(v))
			i += n - 1
		case 'x':
			v, n, ok := readHex(body, i, 1, 2)
			if !ok {
				b.WriteString(`\x`)
				continue
			}
			b.WriteByte(byte(v))
			i += n
		case 'u':
			if i < len(body) && body[i] == '{' {
				if v, n, ok := readJSUnicode(body, i); ok {
					b.WriteRune(v)
					i += n
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String(), true
}

func unquoteRuby(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	switch raw[0] {
	case '\'':
		body, ok := stripQuotes(raw, `'`)
		if !ok {
			return "", false
		}
		return unescapeSingleQuoted(body), true
	case '"':
	default:
		return "", false
	}
	body, ok := stripQuotes(raw, `"`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			i++
			continue
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 's':
			b.WriteByte(' ')
		case 'e':
			b.WriteByte(0x1b)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\n':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := readOctal(body, i-1, 3)
			b.WriteByte(byte(v))
			i += n - 1
		case 'x':
			v, n, ok := readHex(body, i, 1, 2)
			if !ok {
				return "", false
			}
			b.WriteByte(byte(v))
			i += n
		case 'u':
			v, n, ok := readJSUnicode(body, i)
			if !ok {
				return "", false
			}
			b.WriteRune(v)
			i += n
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), true
}

func unquoteLua(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	if raw[0] == '[' {
		return unquoteLuaLong(raw)
	}
	body, ok := stripQuotes(raw, `"'`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n', '\n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\\', '"', '\'':
			b.WriteByte(e)
		case 'z':
			for i < len(body) && strings.IndexByte(" \t\r\n\f\v", body[i]) >= 0 {
				i++
			}
		case 'x':
			v, n, ok := readHex(body, i, 2, 2)
			if !ok {
				return "", false
			}
			b.WriteByte(byte(v))
			i += n
		case 'u':
			v, n, ok := readJSUnicode(body, i)
			if !ok || body[i] != '{' {
				return "", false
			}
			b.WriteRune(v)
			i += n
		default:
			if e < '0' || e > '9' {
				return "", false
			}
			v, n := readDecimal(body, i-1, 3)
			if v > 255 {
				return "", false
			}
			b.WriteByte(byte(v))
			i += n - 1
		}
	}
	return b.String(), true
}

func unquoteLuaLong(raw string) (string, bool) {
	level := 1
	for level < len(raw) && raw[level] == '=' {
		level++
	}
	if level >= len(raw) || raw[level] != '[' {
		return "", false
	}
	eq := level - 1
	closing := "]" + strings.Repeat("=", eq) + "]"
	open := level + 1
	if !strings.HasSuffix(raw, closing) || len(raw) < open+len(closing) {
		return "", false
	}
	body := raw[open : len(raw)-len(closing)]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")
	return body, true
}

func stripQuotes(raw, quotes string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	q := raw[0]
	if strings.IndexByte(quotes, q) < 0 || raw[len(raw)-1] != q {
		return "", false
	}
	return raw[1 : len(raw)-1], true
}

// unescapeSingleQuoted handles the two escapes of PHP and Ruby single-quoted strings.
func unescapeSingleQuoted(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			b.WriteByte(body[i+1])
			i++
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

func readHex(s string, i, minDigits, maxDigits int) (rune, int, bool) {
	var v rune
	n := 0
	for n < maxDigits && i+n < len(s) {
		d, ok := hexDigit(s[i+n])
		if !ok {
			break
		}
		v = v<<4 | d
		n++
	}
	if n < minDigits {
		return 0, 0, false
	}
	return v, n, true
}

func hexDigit(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}

func readOctal(s string, i, maxDigits int) (rune, int) {
	var v rune
	n := 0
	for n < maxDigits && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
		v = v*8 + rune(s[i+n]-'0')
		n++
	}
	return v, n
}

func readDecimal(s string, i, maxDigits int) (int, int) {
	v := 0
	n := 0
	for n < maxDigits && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		v = v*10 + int(s[i+n]-'0')
		n++
	}
	return v, n
}

// writeCodeUnit writes a \x escape: a raw byte when it fits, otherwise a rune.
func writeCodeUnit(b *strings.Builder, v rune) {
	if v <= 0xFF {
		b.WriteByte(byte(v))
		return
	}
	b.WriteRune(v)
}

// unquoteRust decodes Rust string literals. Raw strings r#"..."# are
// returned verbatim; byte strings and C strings are rejected.
func unquoteRust(raw string) (string, bool) {
	if strings.HasPrefix(raw, "r") {
		hashes := 0
		for 1+hashes < len(raw) && raw[1+hashes] == '#' {
			hashes++
		}
		open := 1 + hashes
		closing := `"` + strings.Repeat("#", hashes)
		if open >= len(raw) || raw[open] != '"' || len(raw) < open+1+len(closing) || !strings.HasSuffix(raw, closing) {
			return "", false
		}
		return raw[open+1 : len(raw)-len(closing)], true
	}
	body, ok := stripQuotes(raw, `"`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		e := body[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'x':
			v, n, ok := readHex(body, i, 2, 2)
			if !ok || v > 0x7F {
				return "", false
			}
			b.WriteByte(byte(v))
			i += n
		case 'u':
			if i >= len(body) || body[i] != '{' {
				return "", false
			}
			end := strings.IndexByte(body[i:], '}')
			if end < 2 {
				return "", false
			}
			v, n, ok := readHex(body, i+1, 1, 6)
			if !ok || n != end-1 || !utf8.ValidRune(v) {
				return "", false
			}
			b.WriteRune(v)
			i += end + 1
		case '\n', '\r':
			// line continuation drops the newline and leading whitespace
			for i < len(body) && strings.IndexByte(" \t\r\n", body[i]) >= 0 {
				i++
			}
		default:
			return "", false
		}
	}
	return b.String(), true
}

// unquoteCSharp decodes regular, verbatim (@"") and raw (""" """) C#
// string literals, with or without the u8 suffix.
func unquoteCSharp(raw string) (string, bool) {
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "u8"), "U8")
	switch {
	case strings.HasPrefix(raw, `@"`):
		if len(raw) < 3 || raw[len(raw)-1] != '"' {
			return "", false
		}
		return strings.ReplaceAll(raw[2:len(raw)-1], `""`, `"`), true
	case strings.HasPrefix(raw, `"""`):
		return unquoteCSharpRaw(raw)
	}
	body, ok := stripQuotes(raw, `"`)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		e := body[i+1]
		i += 2
		switch e {
		case '\'', '"', '\\':
			b.WriteByte(e)
		case '0':
			b.WriteByte(0)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'u', 'x':
			minDigits := 4
			if e == 'x' {
				minDigits = 1
			}
			v, n, ok := readHex(body, i, minDigits, 4)
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(v) && strings.HasPrefix(body[i:], `\u`) {
				if lo, m, ok := readHex(body, i+2, 4, 4); ok {
					if r := utf16.DecodeRune(v, lo); r != utf8.RuneError {
						b.WriteRune(r)
						i += 2 + m
						continue
					}
				}
			}
			b.WriteRune(v)
		case 'U':
			v, n, ok := readHex(body, i, 8, 8)
			if !ok || !utf8.ValidRune(v) {
				return "", false
			}
			b.WriteRune(v)
			i += n
		default:
			return "", false
		}
	}
	return b.String(), true
}

// unquoteCSharpRaw handles raw string literals. Multi-line ones drop the
// opening and closing lines and the closing line's indentation.
func unquoteCSharpRaw(raw string) (string, bool) {
	n := 0
	for n < len(raw) && raw[n] == '"' {
		n++
	}
	quotes := raw[:n]
	if len(raw) < 2*n || !strings.HasSuffix(raw, quotes) {
		return "", false
	}
	inner := raw[n : len(raw)-n]
	if !strings.Contains(inner, "\n") {
		return inner, true
	}
	lines := strings.Split(strings.ReplaceAll(inner, "\r\n", "\n"), "\n")
	if strings.TrimSpace(lines[0]) != "" {
		return "", false
	}
	indent := lines[len(lines)-1]
	if strings.TrimSpace(indent) != "" {
		return "", false
	}
	body := lines[1 : len(lines)-1]
	for i, line := range body {
		switch {
		case strings.HasPrefix(line, indent):
			body[i] = line[len(indent):]
		case strings.TrimSpace(line) == "":
			body[i] = ""
		default:
			return "", false
		}
	}
	return strings.Join(body, "\n"), true
}
