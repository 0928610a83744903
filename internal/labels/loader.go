package labels

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"classifyd/internal/common/fsutil"
)

// classesDoc matches files that wrap the list, e.g. {"classes": [...]}.
type classesDoc struct {
	Classes []string `json:"classes" yaml:"classes" toml:"classes"`
}

// LoadFile reads a label set. Supported formats by extension:
// .txt (one label per line, '#' comments), .json and .yaml/.yml (either a
// bare list or an object with a "classes" key) and .toml (classes = [...]).
func LoadFile(path string) ([]string, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var out []string
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".txt", "":
		out = parseLines(b)
	case ".json":
		if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
			err = json.Unmarshal(b, &out)
		} else {
			var doc classesDoc
			err = json.Unmarshal(b, &doc)
			out = doc.Classes
		}
	case ".yaml", ".yml":
		var node yaml.Node
		if err = yaml.Unmarshal(b, &node); err == nil {
			if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
				err = node.Decode(&out)
			} else {
				var doc classesDoc
				err = node.Decode(&doc)
				out = doc.Classes
			}
		}
	case ".toml":
		var doc classesDoc
		err = toml.Unmarshal(b, &doc)
		out = doc.Classes
	default:
		return nil, fmt.Errorf("unsupported labels extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse labels %s: %w", p, err)
	}
	if err := Validate(out); err != nil {
		return nil, fmt.Errorf("labels %s: %w", p, err)
	}
	return out, nil
}

// Validate checks that set is non-empty, has no blank entries and no duplicates.
func Validate(set []string) error {
	if len(set) == 0 {
		return fmt.Errorf("label set is empty")
	}
	seen := make(map[string]int, len(set))
	for i, l := range set {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("label %d is blank", i)
		}
		if j, dup := seen[l]; dup {
			return fmt.Errorf("label %q repeated at %d and %d", l, j, i)
		}
		seen[l] = i
	}
	return nil
}

func parseLines(b []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
