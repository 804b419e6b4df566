package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/dirscrape/internal/config"
)

//go:embed templates/dirscrape.yaml
var configTemplate embed.FS

// templatePath is the path of the site profile template in configTemplate.
const templatePath = "templates/dirscrape.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a site profile configuration file",
		Long: `Init writes a commented .dirscrape configuration file.

The generated file contains the built-in site profile:
- CSS selectors for pagination, detail links and the member card
- Label texts preceding the address, phone, email and contact person
- The User-Agent header sent with every request

Copy a block under "sites:" to adapt dirscrape to another directory
without touching the defaults.

Examples:
  # Create .dirscrape in current directory
  dirscrape init

  # Create the file in the XDG config directory
  dirscrape init --xdg

  # Create config file at a specific path
  dirscrape init -o profiles/members.yaml

  # Force overwrite existing file
  dirscrape init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("xdg", false,
		"Write to the XDG config directory instead of --output")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	useXDG, err := cmd.Flags().GetBool("xdg")
	if err != nil {
		return err
	}
	if useXDG {
		outputPath = filepath.Join(config.XDGConfigDir(), "config.yaml")
	}

	if err := writeConfigTemplate(outputPath, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to adapt dirscrape to a directory site:")
	fmt.Fprintln(out, "  - CSS selectors for links, cards and names")
	fmt.Fprintln(out, "  - Field labels inside the member description")
	fmt.Fprintln(out, "  - Cookies and headers per site")

	return nil
}

// writeConfigTemplate writes the embedded template to path.
// An existing file is kept unless force is set.
func writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Profiles may carry session cookies.
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}
