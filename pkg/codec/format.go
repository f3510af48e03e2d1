package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a serialization format.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// Formats lists every supported format.
var Formats = []Format{JSON, YAML, MsgPack}

// ParseFormat maps a name (or common alias) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mpk", "mp":
		return MsgPack, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return JSON
}

// Ext returns the file extension written for the format.
func (f Format) Ext() string {
	if f == MsgPack {
		return ".mpk"
	}
	return "." + string(f)
}
