package config

import (
	"fmt"
	"strings"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func NormalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		format = FormatJSON
	}
	switch format {
	case FormatJSON, FormatYAML:
		return format, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(
			"invalid format %q (expected %s|%s|yml)",
			raw,
			FormatJSON,
			FormatYAML,
		)
	}
}
