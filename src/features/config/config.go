package config

// Config holds the application configuration.
type Config struct {
	RootPath string   `yaml:"rootPath" validate:"required"`
	Naming   Naming   `yaml:"naming"`
	Removal  Removal  `yaml:"removal"`
	Merge    Merge    `yaml:"merge"`
	Logger   Logger   `yaml:"logger"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Jobs     Jobs     `yaml:"jobs"`
	Watcher  Watcher  `yaml:"watcher"`
	Telegram Telegram `yaml:"telegram"`
}

// Naming controls how merged output files are named.
type Naming struct {
	// By selects the name source: "cue" uses the CUE sheet basename,
	// "folder" uses the game directory name (legacy behavior).
	By      string `yaml:"by" validate:"oneof=cue folder"`
	Asciify bool   `yaml:"asciify"`
}

// Removal controls what happens to the staged originals after a successful merge.
type Removal struct {
	// Mode is one of "never", "always" or "prompt". "prompt" asks once on
	// stdin before a one-shot run; service mode treats it as "never".
	Mode string `yaml:"mode" validate:"oneof=never always prompt"`
}

// Merge holds the external merge tool invocation settings.
type Merge struct {
	// Interpreter runs the tool, e.g. "python3". Empty executes the tool directly.
	Interpreter string `yaml:"interpreter"`
	Tool        string `yaml:"tool" validate:"required"`
}

type Jobs struct {
	Log      bool          `yaml:"log"`
	LogPath  string        `yaml:"log_path"`
	Webhooks WebhookConfig `yaml:"webhooks"`
}

type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	JobTypes []string `yaml:"job_types"`
	Command  string   `yaml:"command"`
}

// Database holds the configuration for the merge history store.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Watcher enables the filesystem watcher that queues a batch run when new
// disc images land under the root path.
type Watcher struct {
	Enabled bool `yaml:"enabled"`
}

type Telegram struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}
