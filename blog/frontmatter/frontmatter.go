// Package frontmatter reads and writes the `---` delimited `key: value`
// header that sits at the top of every post file.
//
// The format is deliberately not YAML: each header line is split on its first
// colon, values are trimmed and lose one layer of matching quotes. No type
// coercion happens here; everything is a string.
package frontmatter

import (
	"strings"
)

const delimiter = "---"

// Fields holds the decoded header values keyed by field name.
// A repeated key keeps the last value seen.
type Fields map[string]string

// Get returns the value for key and whether the key was present.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// Field is one header line to be written by Encode.
type Field struct {
	Key   string
	Value string
	// Raw fields are written verbatim instead of as a double-quoted string.
	// Callers must make sure the value fits on a single line.
	Raw bool
}

// Quoted builds a field written as a double-quoted string.
func Quoted(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Raw builds a field written without quotes (JSON arrays, booleans).
func Raw(key, value string) Field {
	return Field{Key: key, Value: value, Raw: true}
}

// Decode splits raw into its header fields and body.
//
// When raw does not start with a `---` line followed somewhere by a closing
// `---` line, the returned Fields are empty and body is raw unchanged.
// A single blank line directly after the closing delimiter belongs to the
// header, so Decode(Encode(fields, body)) yields body exactly.
func Decode(raw string) (Fields, string) {
	var rest string
	switch {
	case strings.HasPrefix(raw, delimiter+"\n"):
		rest = raw[len(delimiter)+1:]
	case strings.HasPrefix(raw, delimiter+"\r\n"):
		rest = raw[len(delimiter)+2:]
	default:
		return Fields{}, raw
	}

	fields := Fields{}
	for {
		end := strings.IndexByte(rest, '\n')
		line := rest
		if end >= 0 {
			line = rest[:end]
		}
		line = strings.TrimSuffix(line, "\r")

		if line == delimiter {
			if end < 0 {
				return fields, ""
			}
			return fields, trimBlankLine(rest[end+1:])
		}
		if end < 0 {
			// opening delimiter without a closing one
			return Fields{}, raw
		}

		parseLine(fields, line)
		rest = rest[end+1:]
	}
}

// Encode writes fields in the given order between `---` delimiters, followed
// by a blank line and body.
func Encode(fields []Field, body string) string {
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		if f.Raw {
			b.WriteString(f.Value)
		} else {
			b.WriteByte('"')
			b.WriteString(escape(f.Value))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	b.WriteString(delimiter)
	b.WriteString("\n\n")
	b.WriteString(body)
	return b.String()
}

func parseLine(fields Fields, line string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	fields[key] = unquote(strings.TrimSpace(value))
}

func trimBlankLine(body string) string {
	if strings.HasPrefix(body, "\r\n") {
		return body[2:]
	}
	return strings.TrimPrefix(body, "\n")
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first != last {
		return v
	}
	switch first {
	case '"':
		return unescape(v[1 : len(v)-1])
	case '\'':
		return v[1 : len(v)-1]
	}
	return v
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func escape(s string) string {
	return escaper.Replace(s)
}

// unescape reverses escape. Unknown escape sequences are kept as written so
// files produced by hand (or by older tooling that never escaped) survive.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}
