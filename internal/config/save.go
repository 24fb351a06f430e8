package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys lists the scalar settings that SetValue accepts, in dotted form.
var Keys = []string{
	"command",
	"term",
	"rows",
	"cols",
	"shell",
	"poll.interval",
	"poll.timeout",
	"poll.grace",
	"poll.read_quantum",
	"log.path",
	"log.level",
	"capabilities.cache_ttl",
	"capabilities.watch",
	"tracing.enabled",
	"tracing.exporter",
	"tracing.file_path",
	"tracing.otlp_endpoint",
	"tracing.sample_rate",
	"tracing.service_name",
}

// SetValue sets a single dotted key in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SetValue(configPath, key, value string) error {
	if !slices.Contains(Keys, key) && !isFlagKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: user-chosen config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level must be a mapping")
	}

	if err := setPath(doc.Content[0], strings.Split(key, "."), value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

func isFlagKey(key string) bool {
	name, ok := strings.CutPrefix(key, "flags.")
	return ok && name != "" && !strings.Contains(name, ".")
}

// setPath walks or creates nested mappings and replaces the final scalar.
func setPath(node *yaml.Node, path []string, value string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != path[0] {
			continue
		}
		child := node.Content[i+1]
		if len(path) == 1 {
			if child.Kind == yaml.MappingNode || child.Kind == yaml.SequenceNode {
				return fmt.Errorf("%q is a section, not a value", path[0])
			}
			child.Kind = yaml.ScalarNode
			child.Tag = ""
			child.Style = 0
			child.Value = value
			return nil
		}
		if child.Kind != yaml.MappingNode {
			// A null or scalar placeholder becomes the section.
			*child = yaml.Node{Kind: yaml.MappingNode, LineComment: child.LineComment}
		}
		return setPath(child, path[1:], value)
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: path[0]}
	if len(path) == 1 {
		node.Content = append(node.Content, keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
		return nil
	}
	section := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content, keyNode, section)
	return setPath(section, path[1:], value)
}

// Write atomically (write to temp, then rename)
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".intermix.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
