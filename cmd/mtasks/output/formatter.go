package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"mtasks/internal/application/dto"
)

// Format is the value of the --output flag
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatID   Format = "id"
)

// formatNames maps accepted flag values, aliases included, to formats
var formatNames = map[string]Format{
	"":     FormatText,
	"text": FormatText,
	"json": FormatJSON,
	"yaml": FormatYAML,
	"yml":  FormatYAML,
	"id":   FormatID,
	"ids":  FormatID,
}

// Formatter writes command results to stdout. Structured formats encode the
// value as is; the id format writes the IDs of tasks and subtasks only.
type Formatter struct {
	format Format
	writer io.Writer
}

func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{format: format, writer: writer}
}

func (f *Formatter) Format() Format {
	return f.format
}

// IsStructured is true for json and yaml
func (f *Formatter) IsStructured() bool {
	return f.format == FormatJSON || f.format == FormatYAML
}

// Print writes data in the configured format
func (f *Formatter) Print(data any) error {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatID:
		if ids, ok := idsOf(data); ok {
			return f.lines(ids)
		}
		return f.lines([]string{fmt.Sprint(data)})
	case FormatText:
		return f.lines([]string{fmt.Sprint(data)})
	}
	return fmt.Errorf("unsupported output format: %s", f.format)
}

func (f *Formatter) lines(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func idsOf(data any) ([]string, bool) {
	switch v := data.(type) {
	case dto.TaskDTO:
		return []string{v.ID}, true
	case *dto.TaskDTO:
		return []string{v.ID}, true
	case []dto.TaskDTO:
		ids := make([]string, len(v))
		for i, task := range v {
			ids[i] = task.ID
		}
		return ids, true
	case dto.SubTaskDTO:
		return []string{v.ID}, true
	case *dto.SubTaskDTO:
		return []string{v.ID}, true
	}
	return nil, false
}

// ParseFormat reads an --output value
func ParseFormat(s string) (Format, error) {
	if format, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return format, nil
	}
	return FormatText, fmt.Errorf("invalid format %q: must be one of: %s", s, strings.Join(formatList(), ", "))
}

func formatList() []string {
	seen := make(map[Format]bool)
	var names []string
	for _, format := range formatNames {
		if !seen[format] {
			seen[format] = true
			names = append(names, string(format))
		}
	}
	sort.Strings(names)
	return names
}
