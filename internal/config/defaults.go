package config

// Default values for contact matching.
const (
	DefaultThreshold = 0.3
	DefaultLimit     = 3
	DefaultMaxLimit  = 20
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/dialname/data/db/contacts.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/dialname/data/indices/bleve"
	}
	if cfg.Search.DefaultThreshold == 0 {
		cfg.Search.DefaultThreshold = DefaultThreshold
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = DefaultLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = DefaultMaxLimit
	}
	if cfg.Search.NameBoost == 0 {
		cfg.Search.NameBoost = 3.0
	}
	if cfg.Search.Suggestions == 0 {
		cfg.Search.Suggestions = 3
	}
	if cfg.Search.SuggestionMaxDistance == 0 {
		cfg.Search.SuggestionMaxDistance = 2
	}
	if cfg.Search.SuggestionMinFrequency == 0 {
		cfg.Search.SuggestionMinFrequency = 1
	}
	if cfg.Search.CacheTTLSeconds == 0 {
		cfg.Search.CacheTTLSeconds = 300
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".csv", ".xlsx", ".ods", ".yaml", ".yml", ".vcf"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
