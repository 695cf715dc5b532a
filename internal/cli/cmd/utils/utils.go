package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper"
	"github.com/matjam/glpaper/internal/config"
	"github.com/tidwall/pretty"
)

func PrintJSONColored(data any) {
	j, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Errorf("Error marshalling JSON: %v", err)
		return
	}

	jPretty := pretty.Color(j, nil)
	log.Info(string(jPretty))
}

func InstallDefaultConfig() {
	if err := WriteDefaultConfig(config.DefaultPath()); err != nil {
		log.Fatal(err)
	}
}

// WriteDefaultConfig writes the bundled config to path unless a file is
// already there.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Warnf("Config file already exists at %v", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(glpaper.DefaultConfig), 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	log.Infof("Installed default config file at %v", path)
	return nil
}
