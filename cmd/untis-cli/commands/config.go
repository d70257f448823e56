package commands

import (
	"errors"
	"os"
	"untis-scraper/lib/configutil"
	"untis-scraper/lib/recordstore"
	"untis-scraper/lib/scrapers/webuntis/extract"
)

type Config struct {
	BaseUrl  string `json:"base_url"`
	School   string `json:"school"`
	Username string `json:"username"`
	Password string `json:"password"`

	TimeoutSeconds int `json:"timeout_seconds"`
	// badger directory for fetched pages, caching is off when empty
	Cache                string `json:"cache"`
	CacheLifetimeMinutes int    `json:"cache_lifetime_minutes"`
	// directory for http message dumps written with --verbose
	MessageDumps string `json:"message_dumps"`

	Database recordstore.Config `json:"database"`
	Extract  extract.Config     `json:"extract"`
}

var defaultConfig = Config{
	TimeoutSeconds:       30,
	CacheLifetimeMinutes: 60,
	MessageDumps:         "<dev_state>/resty/untis",
}

// readConfig reads the config file, a missing file is not an error since
// parsing saved pages does not need any settings.
func readConfig(path string) (Config, error) {
	config, err := configutil.ReadConfigWithDefaults(path, defaultConfig)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig, nil
	}
	return config, err
}
