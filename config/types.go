package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port        int    `yaml:"port" validate:"gte=0,lte=65535"`
	Environment string `yaml:"environment" validate:"omitempty,oneof=development production test"`
	LogLevel    string `yaml:"logLevel" validate:"omitempty,oneof=trace debug info warn error"`
	Codespace   string `yaml:"codespace"`
}

// FeedConfig contains the live vehicle feed configuration
type FeedConfig struct {
	URL                     string `yaml:"url"`
	Format                  string `yaml:"format" validate:"omitempty,oneof=geojson gtfsrt"`
	TripUpdatesURL          string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	RefreshIntervalMS       int    `yaml:"refreshIntervalMS" validate:"gte=0"`
	TimeoutMS               int    `yaml:"timeoutMS" validate:"gte=0"`
	KeepTrackedOnFetchError bool   `yaml:"keepTrackedOnFetchError"`
}

// ScheduleConfig contains the itinerary source configuration
type ScheduleConfig struct {
	Path      string `yaml:"path"`
	CachePath string `yaml:"cachePath"`
}

// MatcherConfig contains the correlation tunables
type MatcherConfig struct {
	Lines               []string `yaml:"lines" validate:"dive,len=2"`
	WindowMinutes       int      `yaml:"windowMinutes" validate:"gte=0"`
	MinSequenceMatches  int      `yaml:"minSequenceMatches" validate:"gte=0"`
	NotableDelayMinutes int      `yaml:"notableDelayMinutes" validate:"gte=0"`
	Timezone            string   `yaml:"timezone"`
}

// RedisConfig contains the Redis publisher configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Key      string `yaml:"key"`
	Channel  string `yaml:"channel"`
}

// NATSConfig contains the NATS publisher configuration
type NATSConfig struct {
	URL     string `yaml:"url" validate:"omitempty,url"`
	Subject string `yaml:"subject"`
}

// S3Config contains object storage settings for s3:// schedule paths
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	S3       S3Config       `yaml:"s3"`
}
