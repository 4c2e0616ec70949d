package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scaffold writes a starter .pagekit.yml to path. It refuses to overwrite an
// existing file so a re-run of `pagekit init` cannot clobber local edits.
// Durations are written in Go duration syntax ("500ms"), which the loader's
// duration hook parses back.
func Scaffold(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	var defaults Config
	ApplyDefaults(&defaults)

	scaffold := map[string]interface{}{
		"server": map[string]interface{}{
			"port":        defaults.Server.Port,
			"host":        defaults.Server.Host,
			"live_reload": true,
		},
		"assets": map[string]interface{}{
			"source_dir":   defaults.Assets.SourceDir,
			"output_dir":   defaults.Assets.OutputDir,
			"jpeg_quality": defaults.Assets.JPEGQuality,
			"precompress":  true,
			"ignore":       defaults.Assets.Ignore,
		},
		"forms": map[string]interface{}{
			"honeypot_field": defaults.Forms.HoneypotField,
			"debounce_delay": defaults.Forms.DebounceDelay.String(),
			"submit_timeout": defaults.Forms.SubmitTimeout.String(),
			"success_notice": defaults.Forms.SuccessNotice.String(),
		},
		"seo": map[string]interface{}{
			"title":       "Your Landing Page",
			"description": "Describe your offering in one sentence.",
			"canonical":   "https://example.com/",
			"site_name":   "Your Site",
		},
		"logging": map[string]interface{}{
			"level":  defaults.Logging.Level,
			"format": defaults.Logging.Format,
		},
	}

	data, err := yaml.Marshal(scaffold)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	header := []byte("# pagekit configuration\n# Values can be overridden with PAGEKIT_<SECTION>_<OPTION> environment variables.\n")

	return os.WriteFile(path, append(header, data...), 0644)
}
