package config

import (
	"github.com/spf13/viper"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	AppPort     string
	MongoURI    string
	MongoDB     string
	RabbitMQURL string
	LogLevel    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "productsdb")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.SetDefault("LOG_LEVEL", "info")
	viper.AutomaticEnv()

	return &Config{
		AppPort:     viper.GetString("APP_PORT"),
		MongoURI:    viper.GetString("MONGO_URI"),
		MongoDB:     viper.GetString("MONGO_DB"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
	}
}
