package moana

// Config is the controller configuration persisted as config.yaml inside the config
// directory (separate from any GUI or deployment configuration).
type Config struct {
	ConfigDir        string   `mapstructure:"config_dir"`        // Current config dir
	CacheVersion     string   `mapstructure:"cache_version"`     // Version tag encoded into the store names
	Origin           string   `mapstructure:"origin"`            // Site origin precache paths are resolved against
	PrecacheManifest []string `mapstructure:"precache_manifest"` // Declared list of root-relative asset paths
	OfflinePath      string   `mapstructure:"offline_path"`      // Optional offline fallback page, must be part of the manifest
	DefaultAddress   string   `mapstructure:"default_address"`   // Listener address
	DefaultPort      string   `mapstructure:"default_port"`      // Listener port
	MongoURI         string   `mapstructure:"mongo_uri"`         // Document store connection string
	MongoDatabase    string   `mapstructure:"mongo_database"`    // Document store database name
	UploadURL        string   `mapstructure:"upload_url"`        // Media upload endpoint
	UploadPresets    []string `mapstructure:"upload_presets"`    // Ordered upload preset list, primary first
	UploadFolder     string   `mapstructure:"upload_folder"`     // Destination folder for media uploads
	APIPort          string   `mapstructure:"api_port"`          // Port the admin/public HTTP API listens on
}
