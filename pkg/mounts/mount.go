// Package mounts parses the host mount table and locates a tmpfs directory
// suitable as shared memory backing storage.
//
// The accepted format is the one of /proc/mounts and /etc/fstab:
//
//	device mount_point fstype option1,option2 dump_frequency pass_number
//
// device and mount_point may contain "\040" for a space; any other
// backslash escapes the character following it.
package mounts

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/valyala/bytebufferpool"
)

// FilesystemType is the third mount table field. TmpFS is the only value
// the bridge cares about; every other value is kept as written.
type FilesystemType string

const TmpFS FilesystemType = "tmpfs"

// IsTmpfs reports whether t names a tmpfs mount.
func (t FilesystemType) IsTmpfs() bool {
	return t == TmpFS
}

// Mount is a single mount table record.
type Mount struct {
	Device        string
	MountPoint    string
	Type          FilesystemType
	Options       []string
	DumpFrequency uint8
	PassNumber    uint8
}

const fieldCount = 6

// ParseError describes a mount table line that could not be parsed. Line is
// the 1-based line number inside a table, or 0 for a standalone parse.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mounts: line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("mounts: %s: %q", e.Reason, e.Text)
}

// ParseLine parses one mount table line. The whole line must match the
// grammar; a Mount is only returned when every field parsed.
func ParseLine(line string) (Mount, error) {
	fail := func(format string, a ...interface{}) (Mount, error) {
		return Mount{}, &ParseError{Text: line, Reason: fmt.Sprintf(format, a...)}
	}

	fields := strings.FieldsFunc(line, isBlank)
	if len(fields) != fieldCount {
		return fail("expected %d fields, got %d", fieldCount, len(fields))
	}
	if strings.ContainsFunc(line, isSpaceNotBlank) {
		return fail("unexpected whitespace")
	}

	device, err := unescape(fields[0])
	if err != nil {
		return fail("device: %v", err)
	}
	mountPoint, err := unescape(fields[1])
	if err != nil {
		return fail("mount point: %v", err)
	}
	freq, err := strconv.ParseUint(fields[4], 10, 8)
	if err != nil || !allDigits(fields[4]) {
		return fail("dump frequency %q is not a number in 0-255", fields[4])
	}
	pass := fields[5]
	if len(pass) != 1 || pass[0] < '0' || pass[0] > '2' {
		return fail("pass number %q is not one of 0, 1, 2", pass)
	}

	return Mount{
		Device:        device,
		MountPoint:    mountPoint,
		Type:          FilesystemType(fields[2]),
		Options:       strings.Split(fields[3], ","),
		DumpFrequency: uint8(freq),
		PassNumber:    pass[0] - '0',
	}, nil
}

// Escape encodes s the way the mount table stores device and mount point
// fields. It is the inverse of the decoding ParseLine applies.
func Escape(s string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			_, _ = buf.WriteString(`\040`)
		case '\\':
			_, _ = buf.WriteString(`\\`)
		default:
			_ = buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

func unescape(field string) (string, error) {
	if strings.IndexByte(field, '\\') < 0 {
		return field, nil
	}
	var b strings.Builder
	b.Grow(len(field))
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(field) {
			return "", fmt.Errorf("trailing backslash in %q", field)
		}
		if strings.HasPrefix(field[i+1:], "040") {
			b.WriteByte(' ')
			i += 3
			continue
		}
		b.WriteByte(field[i+1])
		i++
	}
	return b.String(), nil
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// isSpaceNotBlank catches the whitespace FieldsFunc would otherwise keep
// inside a field, such as a carriage return or vertical tab.
func isSpaceNotBlank(r rune) bool {
	return unicode.IsSpace(r) && !isBlank(r)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
