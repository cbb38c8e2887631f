package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readPayload decodes the YAML file named by the --file flag into v. "-"
// reads stdin.
func readPayload(cmd *cobra.Command, v any) error {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return errors.New("a payload file is required (--file)")
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open payload: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse payload %s: %w", file, err)
	}
	return nil
}

// pageFilters adds the --page and --size flags to overrides when set
func pageFilters(cmd *cobra.Command, overrides map[string]any) {
	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		overrides["page"] = page
	}
	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		overrides["size"] = size
	}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "Page number")
	cmd.Flags().Int("size", 0, "Page size")
}
