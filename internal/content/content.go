// Package content embeds the default prompts every user starts with.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ecosnap/ecosnap/internal/markdown"
	"github.com/ecosnap/ecosnap/internal/model"
)

//go:embed prompts/*.md
var promptsFS embed.FS

// DefaultPrompts returns the embedded prompts in file name order. Each file
// is Markdown with an optional "label" in its front matter; the body is the
// prompt sent to the vision model.
func DefaultPrompts() ([]model.PromptTemplate, error) {
	return loadPrompts(promptsFS, "prompts")
}

func loadPrompts(fsys fs.FS, dir string) ([]model.PromptTemplate, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	parser := markdown.NewParser()
	var prompts []model.PromptTemplate
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}

		source, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt %s: %w", entry.Name(), err)
		}

		meta, body := parser.Split(source)
		value := strings.TrimSpace(body)
		if value == "" {
			return nil, fmt.Errorf("prompt %s is empty", entry.Name())
		}

		label, _ := meta["label"].(string)
		if strings.TrimSpace(label) == "" {
			label = labelFromFilename(entry.Name())
		}

		prompts = append(prompts, model.PromptTemplate{Label: strings.TrimSpace(label), Value: value})
	}

	return prompts, nil
}

// labelFromFilename turns "07-plant-identification.md" into "Plant Identification".
func labelFromFilename(name string) string {
	name = strings.TrimSuffix(name, path.Ext(name))
	if prefix, rest, ok := strings.Cut(name, "-"); ok && strings.Trim(prefix, "0123456789") == "" {
		name = rest
	}
	name = strings.ReplaceAll(name, "-", " ")
	return cases.Title(language.English).String(name)
}
