package serialization

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const yamlDelimiter = "---"

// FrontmatterDocument is a markdown file with a YAML header
type FrontmatterDocument struct {
	Frontmatter map[string]any
	Content     string
}

// ParseFrontmatter splits data into its YAML header and body. Data without a
// leading delimiter is all body. The body is kept as written apart from the
// final newline, so SerializeFrontmatter output parses back to its content.
func ParseFrontmatter(data []byte) (*FrontmatterDocument, error) {
	doc := &FrontmatterDocument{Frontmatter: make(map[string]any)}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(first) != yamlDelimiter {
		doc.Content = text
		return doc, nil
	}

	var header []string
	closed := false
	for {
		var line string
		var more bool
		line, rest, more = strings.Cut(rest, "\n")
		if strings.TrimSpace(line) == yamlDelimiter {
			closed = true
			break
		}
		header = append(header, line)
		if !more {
			break
		}
	}
	if !closed {
		return nil, fmt.Errorf("unterminated YAML frontmatter")
	}

	if len(header) > 0 {
		if err := yaml.Unmarshal([]byte(strings.Join(header, "\n")), &doc.Frontmatter); err != nil {
			return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
		}
		if doc.Frontmatter == nil {
			doc.Frontmatter = make(map[string]any)
		}
	}
	// SerializeFrontmatter ends the body with one newline; the rest is content
	doc.Content = strings.TrimSuffix(rest, "\n")

	return doc, nil
}

// SerializeFrontmatter writes frontmatter and content as a markdown document
func SerializeFrontmatter(frontmatter map[string]any, content string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(yamlDelimiter + "\n")

	if len(frontmatter) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(frontmatter); err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
	}

	buf.WriteString(yamlDelimiter + "\n")
	if content != "" {
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
