// Command validate-registry validates unit registry YAML files.
//
// Usage:
//
//	validate-registry [options] [path...]
//
// If no paths are provided, validates the project's two registry files
// (configs/mcps.yaml and configs/public_mcps.yaml under the project
// root). A directory argument expands to the YAML files inside it.
//
// Options:
//
//	-strict     Treat warnings as errors
//	-json       Output results as JSON
//	-quiet      Only output errors
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/proteinmcp/proteinmcp/internal/domain/registry"
	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
)

var (
	strict = false
	asJSON = false
	quiet  = false
)

func main() {
	fs := flag.NewFlagSet("validate-registry", flag.ExitOnError)
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&asJSON, "json", false, "Output results as JSON")
	fs.BoolVar(&quiet, "quiet", false, "Only output errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(fs.Args(), strict, asJSON, quiet))
}

func run(paths []string, strict, asJSON, quiet bool) int {
	if len(paths) == 0 {
		paths = defaultPaths()
	}

	exitCode := 0
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			exitCode = 1
			continue
		}
		if info.IsDir() {
			expanded, err := yamlFiles(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading directory %s: %v\n", path, err)
				exitCode = 1
				continue
			}
			files = append(files, expanded...)
		} else {
			files = append(files, path)
		}
	}

	allResults := registry.ValidateFiles(files...)

	if asJSON {
		outputJSON(allResults)
	} else {
		outputText(allResults, quiet, strict)
	}

	for _, result := range allResults {
		if !result.Valid {
			exitCode = 1
		}
		if strict && len(result.Warnings) > 0 {
			exitCode = 1
		}
	}
	return exitCode
}

// defaultPaths resolves the project's two registry files, honoring any
// overrides in the settings file.
func defaultPaths() []string {
	root := settings.ProjectRoot()
	cfg, err := settings.NewStore(filepath.Join(root, settings.FileName)).Load()
	if err != nil {
		cfg = settings.Default()
	}
	p := settings.NewPaths(root, cfg)
	return []string{p.InstalledConfig, p.PublicConfig}
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func outputJSON(results map[string]*registry.ValidationResult) {
	output := struct {
		Results map[string]*registry.ValidationResult `json:"results"`
		Summary struct {
			Total   int `json:"total"`
			Valid   int `json:"valid"`
			Invalid int `json:"invalid"`
		} `json:"summary"`
	}{
		Results: results,
	}

	for _, r := range results {
		output.Summary.Total++
		if r.Valid {
			output.Summary.Valid++
		} else {
			output.Summary.Invalid++
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func outputText(results map[string]*registry.ValidationResult, quiet, strict bool) {
	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	validCount := 0
	invalidCount := 0
	for _, path := range paths {
		result := results[path]
		if result.Valid && len(result.Warnings) == 0 && quiet {
			validCount++
			continue
		}

		if result.Valid {
			validCount++
			if !quiet {
				fmt.Printf("✓ %s\n", path)
			}
		} else {
			invalidCount++
			fmt.Printf("✗ %s\n", path)
		}

		for _, err := range result.Errors {
			fmt.Printf("  ERROR: %s: %s\n", err.Field, err.Message)
		}
		if !quiet || strict {
			for _, warn := range result.Warnings {
				fmt.Printf("  WARN:  %s: %s\n", warn.Field, warn.Message)
			}
		}
	}

	if !quiet {
		fmt.Println()
		fmt.Printf("Summary: %d valid, %d invalid\n", validCount, invalidCount)
	}
}
