package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment overrides on top of c.
// DIFFICULTY switches the rules preset before individual overrides apply.
func FromEnv(c *Config) *Config {
	out := *c

	if mode := os.Getenv("DIFFICULTY"); mode != "" {
		if rules, err := Preset(mode); err == nil {
			out.Preset = mode
			out.Rules = rules
		}
	}

	if val, ok := getEnvInt("SCOUNDREL_MAX_LIFE"); ok && val > 0 {
		out.Rules.MaxLife = val
		if out.Rules.StartLife > val {
			out.Rules.StartLife = val
		}
	}
	if val, ok := getEnvInt("SCOUNDREL_START_LIFE"); ok && val >= 0 {
		out.Rules.StartLife = val
	}
	if val, ok := getEnvInt("SCOUNDREL_FLOORS"); ok && val > 0 {
		out.Rules.FloorCount = val
	}
	if val, ok := getEnvInt("SCOUNDREL_INVENTORY"); ok && val >= 0 {
		out.Rules.InventoryCapacity = val
	}

	if val := os.Getenv("SCOUNDREL_ADDR"); val != "" {
		out.Server.Addr = val
	}
	if val := os.Getenv("SCOUNDREL_DATA_DIR"); val != "" {
		out.Server.DataDir = val
	}
	if val := os.Getenv("SCOUNDREL_SAVE_BACKEND"); val != "" {
		out.Server.SaveBackend = val
	}
	if val := os.Getenv("SCOUNDREL_LOG_LEVEL"); val != "" {
		out.Log.Level = val
	}

	return &out
}

func getEnvInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return num, true
}
