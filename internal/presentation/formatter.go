package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatText = "text"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format string
}

// NewFormatter creates a new formatter. An empty format means YAML.
func NewFormatter(writer io.Writer, format string) (*Formatter, error) {
	switch format {
	case "":
		format = FormatYAML
	case FormatYAML, FormatJSON, FormatText:
	default:
		return nil, fmt.Errorf("unknown output format %q (must be yaml, json or text)", format)
	}
	return &Formatter{writer: writer, format: format}, nil
}

// FormatDatabase writes a capability database.
func (f *Formatter) FormatDatabase(db DatabaseDTO) error {
	if f.format != FormatText {
		return f.encode(db)
	}
	if _, err := fmt.Fprintf(f.writer, "%s (%d capabilities)\n", db.Term, db.Count); err != nil {
		return err
	}
	for _, c := range db.Capabilities {
		if _, err := fmt.Fprintf(f.writer, "%-8s %-28s %s(%s)\n", c.Name, c.LongName, c.Value, c.Hex); err != nil {
			return err
		}
	}
	return nil
}

// FormatSummary writes the result of a run. The text format prints the
// final screen followed by the unhandled sequence counts.
func (f *Formatter) FormatSummary(s RunSummaryDTO) error {
	if f.format != FormatText {
		return f.encode(s)
	}
	var b strings.Builder
	for _, line := range s.Screen {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "--- %s (pid %d, run %s) %s", s.Command, s.PID, s.RunID, s.State)
	if s.ExitCause != "" {
		fmt.Fprintf(&b, ": %s", s.ExitCause)
	}
	b.WriteByte('\n')
	for _, u := range s.Unhandled {
		fmt.Fprintf(&b, "unhandled %s %s x%d\n", u.Kind, u.Sequence, u.Count)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func (f *Formatter) encode(v any) error {
	if f.format == FormatJSON {
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
