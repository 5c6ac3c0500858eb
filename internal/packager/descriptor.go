package packager

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrProjectNameMissing reports a project descriptor without a config/name
// entry. The graph builder treats this as fatal before scheduling.
var ErrProjectNameMissing = errors.New("packager: project descriptor has no config/name entry")

const projectNamePrefix = "config/name="

// DescriptorParser reads interactive project descriptors. It satisfies
// graph.DescriptorParser.
type DescriptorParser struct{}

// NewDescriptorParser returns a descriptor parser.
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// ProjectName returns the project name declared by the descriptor at path.
// Surrounding quotes are dropped and spaces become underscores so the name is
// usable as an artifact file name.
func (p *DescriptorParser) ProjectName(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("packager: open descriptor: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, projectNamePrefix) {
			continue
		}
		name := strings.TrimPrefix(line, projectNamePrefix)
		name = strings.ReplaceAll(name, `"`, "")
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.TrimSpace(name)
		if name == "" {
			return "", ErrProjectNameMissing
		}
		return name, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("packager: read descriptor: %w", err)
	}
	return "", ErrProjectNameMissing
}
