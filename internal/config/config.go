// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	Distribution DistributionConfig
	Export       ExportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RunTTLSeconds int
}

// DistributionConfig carries the engine defaults a tenant can override per
// request.
type DistributionConfig struct {
	ThresholdA      float64
	ThresholdB      float64
	HierarchyLevel  string
	WeightQuantity  float64
	WeightValue     float64
	WeightMargin    float64
	ServiceLevelA   float64
	ServiceLevelB   float64
	ServiceLevelC   float64
	CoverageDaysA   int
	CoverageDaysB   int
	CoverageDaysC   int
	AnalysisWindowD int
}

type ExportConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "planogram")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RUN_TTL_SECONDS", 300)
		viper.SetDefault("DIST_THRESHOLD_A", 0.80)
		viper.SetDefault("DIST_THRESHOLD_B", 0.95)
		viper.SetDefault("DIST_HIERARCHY_LEVEL", "category")
		viper.SetDefault("DIST_WEIGHT_QUANTITY", 0.3)
		viper.SetDefault("DIST_WEIGHT_VALUE", 0.5)
		viper.SetDefault("DIST_WEIGHT_MARGIN", 0.2)
		viper.SetDefault("DIST_SERVICE_LEVEL_A", 0.95)
		viper.SetDefault("DIST_SERVICE_LEVEL_B", 0.90)
		viper.SetDefault("DIST_SERVICE_LEVEL_C", 0.80)
		viper.SetDefault("DIST_COVERAGE_DAYS_A", 7)
		viper.SetDefault("DIST_COVERAGE_DAYS_B", 5)
		viper.SetDefault("DIST_COVERAGE_DAYS_C", 3)
		viper.SetDefault("DIST_ANALYSIS_WINDOW_DAYS", 90)
		viper.SetDefault("EXPORT_ENDPOINT", "")
		viper.SetDefault("EXPORT_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_SECRET_KEY", "")
		viper.SetDefault("EXPORT_BUCKET", "planograms")
		viper.SetDefault("EXPORT_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				RunTTLSeconds: viper.GetInt("CACHE_RUN_TTL_SECONDS"),
			},
			Distribution: DistributionConfig{
				ThresholdA:      viper.GetFloat64("DIST_THRESHOLD_A"),
				ThresholdB:      viper.GetFloat64("DIST_THRESHOLD_B"),
				HierarchyLevel:  viper.GetString("DIST_HIERARCHY_LEVEL"),
				WeightQuantity:  viper.GetFloat64("DIST_WEIGHT_QUANTITY"),
				WeightValue:     viper.GetFloat64("DIST_WEIGHT_VALUE"),
				WeightMargin:    viper.GetFloat64("DIST_WEIGHT_MARGIN"),
				ServiceLevelA:   viper.GetFloat64("DIST_SERVICE_LEVEL_A"),
				ServiceLevelB:   viper.GetFloat64("DIST_SERVICE_LEVEL_B"),
				ServiceLevelC:   viper.GetFloat64("DIST_SERVICE_LEVEL_C"),
				CoverageDaysA:   viper.GetInt("DIST_COVERAGE_DAYS_A"),
				CoverageDaysB:   viper.GetInt("DIST_COVERAGE_DAYS_B"),
				CoverageDaysC:   viper.GetInt("DIST_COVERAGE_DAYS_C"),
				AnalysisWindowD: viper.GetInt("DIST_ANALYSIS_WINDOW_DAYS"),
			},
			Export: ExportConfig{
				Endpoint:  viper.GetString("EXPORT_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_SECRET_KEY"),
				Bucket:    viper.GetString("EXPORT_BUCKET"),
				UseSSL:    viper.GetBool("EXPORT_USE_SSL"),
			},
		}
	})

	return instance
}
