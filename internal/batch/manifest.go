package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Summary is the batch report written after a run.
type Summary struct {
	Scenes    int      `yaml:"scenes"`
	Succeeded int      `yaml:"succeeded"`
	Failed    int      `yaml:"failed"`
	Results   []Result `yaml:"results"`
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Scenes: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// WriteSummary writes the batch summary as YAML to path.
func WriteSummary(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating summary dir: %w", err)
	}
	data, err := yaml.Marshal(Summarize(results))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
