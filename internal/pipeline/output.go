package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutputs writes each rendered document to
// dir/<format>/<file><ext> and the project TOC to dir/toc.json.
func WriteOutputs(dir string, res *Result) error {
	for format, files := range res.Outputs {
		ext := OutputExtension(format)
		for file, content := range files {
			p := filepath.Join(dir, format, filepath.FromSlash(file)+ext)
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
		}
	}
	if res.TOC != nil {
		data, err := json.MarshalIndent(res.TOC, "", "  ")
		if err != nil {
			return fmt.Errorf("encode toc: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "toc.json"), data, 0o644); err != nil {
			return fmt.Errorf("write toc: %w", err)
		}
	}
	return nil
}
