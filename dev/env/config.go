package devenv

// WebUntisTestConfig is read from <dev_state>/webuntis_config.json5 by the
// tests that talk to a real portal, they are skipped without it.
type WebUntisTestConfig struct {
	BaseUrl  string `json:"base_url"`
	School   string `json:"school"`
	Username string `json:"username"`
	Password string `json:"password"`
}
