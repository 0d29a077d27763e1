package utils

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig reads a .env file from the given path (when present) and wires
// viper to the process environment so config keys resolve either way.
func LoadConfig(path string) {
	_ = godotenv.Load(path + "/.env")

	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
