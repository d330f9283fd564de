package config

// SourceConfig represents a complete news source configuration
type SourceConfig struct {
	Source   SourceInfo     `yaml:"source"`
	Settings SourceSettings `yaml:"settings"`
}

// SourceInfo contains basic source information
type SourceInfo struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"` // rss, api, scraper
	Category string `yaml:"category"`
	Language string `yaml:"language"`
}

// SourceSettings contains collection settings for a source
type SourceSettings struct {
	Enabled         bool `yaml:"enabled"`
	Priority        int  `yaml:"priority"`         // pipeline priority for collected articles
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"` // seconds
	ExtractContent  bool `yaml:"extract_content"`
}
