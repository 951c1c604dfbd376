package moana

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/moanarentals/moana/domain"
	"github.com/spf13/viper"
)

// WithOptions applies a series of configuration functions to the controller instance.
// Each option function can modify the controller configuration and return an error if it fails.
//
// Parameters:
//   - options: Variadic list of configuration functions
//
// Returns:
//   - error: First error encountered from any option function
func (controller *Controller) WithOptions(options ...func(*Controller) error) error {
	for _, option := range options {
		err := option(controller)
		if err != nil {
			return fmt.Errorf("applying option on moana : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the controller to use the specified configuration directory.
// It creates the directory if it doesn't exist and initializes the configuration file using Viper.
//
// Parameters:
//   - appConfigDir: Path to the configuration directory
//
// Returns:
//   - func(*Controller) error: Configuration function that sets up the config directory
func WithConfigDir(appConfigDir string) func(*Controller) error {
	return func(controller *Controller) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		// At this point, the directory exists or was created successfully
		controller.ConfigDir = appConfigDir

		// VIPER
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appConfigDir)
		viper.SetDefault("cache_version", "v1")
		viper.SetDefault("origin", "http://127.0.0.1:3000")
		viper.SetDefault("precache_manifest", []string{"/", "/index.html", "/logo.png", "/manifest.json"})
		viper.SetDefault("offline_path", "")
		viper.SetDefault("default_address", "127.0.0.1")
		viper.SetDefault("default_port", "8080")
		viper.SetDefault("mongo_uri", "mongodb://127.0.0.1:27017")
		viper.SetDefault("mongo_database", "moana")
		viper.SetDefault("upload_url", "")
		viper.SetDefault("upload_presets", []string{"moana_rentals", "ml_default"})
		viper.SetDefault("upload_folder", "moana-rentals")
		viper.SetDefault("api_port", "8585")
		err = viper.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				// Config file is not found
				err = viper.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		if err := viper.Unmarshal(&controller.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}

		controller.Config.ConfigDir = appConfigDir
		// Rewrite entire file from struct
		err = viper.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}

		controller.Version = controller.Config.CacheVersion
		controller.Manifest = controller.Config.PrecacheManifest
		controller.OfflinePath = controller.Config.OfflinePath

		origin, err := url.Parse(controller.Config.Origin)
		if err != nil {
			return fmt.Errorf("parsing origin %s : %w", controller.Config.Origin, err)
		}
		controller.Origin = origin
		return nil
	}
}

// WithRepo will take the Repository interface and close any previously configured repository
func WithRepo(repo Repository) func(*Controller) error {
	return func(controller *Controller) error {
		// First we need to check if there is a repo
		if controller.Repo != nil {
			if err := controller.Repo.Close(); err != nil {
				return err
			}
			controller.Repo = nil
		}
		controller.Repo = repo
		return nil
	}
}

// WithVersion overrides the cache version tag used to derive the store names
func WithVersion(version string) func(*Controller) error {
	return func(controller *Controller) error {
		if version == "" {
			return errors.New("version must not be empty")
		}
		controller.Version = version
		return nil
	}
}

// WithOrigin sets the site origin precache paths are resolved against
func WithOrigin(origin string) func(*Controller) error {
	return func(controller *Controller) error {
		parsed, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("parsing origin %s : %w", origin, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("origin %s must be absolute", origin)
		}
		controller.Origin = parsed
		return nil
	}
}

// WithManifest sets the declared precache manifest (root-relative paths)
func WithManifest(paths ...string) func(*Controller) error {
	return func(controller *Controller) error {
		controller.Manifest = paths
		return nil
	}
}

// WithOfflinePath declares the precached page served when a navigation fetch fails
func WithOfflinePath(path string) func(*Controller) error {
	return func(controller *Controller) error {
		controller.OfflinePath = path
		return nil
	}
}

// WithLogHandler takes a handler function that will be executed on each Log
func WithLogHandler(handler func(log domain.Log) error) func(*Controller) error {
	return func(controller *Controller) error {
		if controller.OnLog != nil {
			return errors.New("controller already has a log handler defined")
		}
		controller.OnLog = handler
		return nil
	}
}

// WithAssetHandler takes a handler function that will be executed whenever an asset is written to a store
func WithAssetHandler(handler func(asset domain.CachedAsset) error) func(*Controller) error {
	return func(controller *Controller) error {
		if controller.OnAsset != nil {
			return errors.New("controller already has an asset handler defined")
		}
		controller.OnAsset = handler
		return nil
	}
}

// WithDefaultModifiers wires the modifier pipeline into the martian proxy and adds the
// default modifiers: request context setup, CONNECT skipping, and loop prevention.
func WithDefaultModifiers() func(*Controller) error {
	return func(controller *Controller) error {
		if controller.martianProxy == nil {
			return errors.New("controller has no martianProxy")
		}
		controller.martianProxy.SetRequestModifier(controller.Modifiers)
		controller.martianProxy.SetResponseModifier(controller.Modifiers)

		controller.AddRequestModifier(PreventLoopModifier)
		controller.AddRequestModifier(SkipConnectRequestModifier)
		controller.AddRequestModifier(SetupRequestModifier)
		return nil
	}
}
