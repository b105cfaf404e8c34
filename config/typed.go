package config

import "fmt"

// Config is the engine's typed configuration surface, decoded from the
// map ReadConfig produces. The engine's config is small and fixed (unlike
// the generic service config ReadConfig was originally written for), so
// callers should use Load rather than work with the untyped map directly.
type Config struct {
	LicenseKeyPath     string
	DefaultWorkerCount int
	OutputDir          string
	LogDir             string
}

// Load reads the config file via ReadConfig and decodes the fields the
// engine cares about into a Config. Fields absent from the file are left
// at their zero value; DefaultWorkerCount defaults to 1 when absent or
// non-numeric, since 0 workers would stall every scenario fanout.
func Load() (Config, error) {
	raw, err := ReadConfig()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{DefaultWorkerCount: 1}
	if v, ok := raw["license_key_path"].(string); ok {
		cfg.LicenseKeyPath = v
	}
	if v, ok := raw["output_dir"].(string); ok {
		cfg.OutputDir = v
	}
	if v, ok := raw["log_dir"].(string); ok {
		cfg.LogDir = v
	}
	if v, ok := raw["default_worker_count"].(float64); ok && v > 0 {
		cfg.DefaultWorkerCount = int(v)
	}
	return cfg, nil
}

func (c Config) String() string {
	return fmt.Sprintf("Config{license_key_path=%q default_worker_count=%d output_dir=%q log_dir=%q}",
		c.LicenseKeyPath, c.DefaultWorkerCount, c.OutputDir, c.LogDir)
}
