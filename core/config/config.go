package config

import (
	"reflect"
	"strings"

	"nebula/core/database"
	"nebula/core/logger"
	"nebula/core/secrets"
	"nebula/core/server"
	"nebula/core/storage"
	"nebula/core/transport"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the backup object storage (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the inventory database.
	Database database.Config `mapstructure:"database"`
	// Discovery holds configuration shared by the controller and hypervisor clients.
	Discovery Discovery `mapstructure:"discovery"`
	// Secrets holds the key used to seal stored controller credentials.
	Secrets secrets.Config `mapstructure:"secrets"`
}

// Discovery configures the outbound discovery clients.
type Discovery struct {
	HTTP transport.Config `mapstructure:"http"`
	// UnifiSite is the controller site whose devices are pulled.
	UnifiSite string `mapstructure:"unifi_site" default:"default"`
	// ProxmoxPort is used when the host given by the operator carries no port.
	ProxmoxPort string `mapstructure:"proxmox_port" default:"8006"`
}

// legacyEnv maps keys to environment variable names kept for older deployments.
var legacyEnv = map[string][]string{
	"database.name": {"DATABASE_NAME", "DB_FILE"},
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
