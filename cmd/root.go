package cmd

import (
	"strings"
	"time"

	globalConfig "github.com/savora/savora/config"
	"github.com/savora/savora/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "savora",
	Short: "Offline-first cache and sync engine for the Savora recipe service",
	Long: `Savora keeps a local, bounded cache of recipes and search results,
queues mutations while the remote recipe service is unreachable and
replays them once connectivity returns.`,
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initLogging)
}

// initEnvConfig loads configuration from environment variables
func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}
	if envBasicAuth := viper.GetString("app_basic_auth"); envBasicAuth != "" {
		globalConfig.AppBasicAuthCredential = strings.Split(envBasicAuth, ",")
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		globalConfig.AppBasePath = envBasePath
	}

	// Local store settings
	if envDriver := viper.GetString("db_driver"); envDriver != "" {
		globalConfig.DBDriver = envDriver
	}
	if envName := viper.GetString("db_name"); envName != "" {
		globalConfig.DBName = envName
	}
	if envHost := viper.GetString("db_host"); envHost != "" {
		globalConfig.DBHost = envHost
	}
	if envPort := viper.GetInt("db_port"); envPort != 0 {
		globalConfig.DBPort = envPort
	}
	if envUser := viper.GetString("db_user"); envUser != "" {
		globalConfig.DBUser = envUser
	}
	if envPassword := viper.GetString("db_password"); envPassword != "" {
		globalConfig.DBPassword = envPassword
	}

	// Remote service settings
	if envBaseURL := viper.GetString("remote_base_url"); envBaseURL != "" {
		globalConfig.RemoteBaseURL = envBaseURL
	}
	if envToken := viper.GetString("remote_token"); envToken != "" {
		globalConfig.RemoteToken = envToken
	}
	if envTimeout := viper.GetDuration("remote_timeout"); envTimeout > 0 {
		globalConfig.RemoteTimeout = envTimeout
	}

	// Engine tuning
	if envMax := viper.GetInt("cache_max_recipes"); envMax > 0 {
		globalConfig.CacheMaxRecipes = envMax
	}
	if envBatch := viper.GetInt("cache_evict_batch"); envBatch > 0 {
		globalConfig.CacheEvictBatch = envBatch
	}
	if envMax := viper.GetInt("search_cache_max_entries"); envMax > 0 {
		globalConfig.SearchCacheMaxEntries = envMax
	}
	if envTTL := viper.GetDuration("search_cache_ttl"); envTTL > 0 {
		globalConfig.SearchCacheTTL = envTTL
	}
	if envRetries := viper.GetInt("queue_max_retries"); envRetries > 0 {
		globalConfig.QueueMaxRetries = envRetries
	}
	if envInterval := viper.GetDuration("sync_interval"); envInterval > 0 {
		globalConfig.SyncInterval = envInterval
	}
	if viper.IsSet("probe_enabled") {
		globalConfig.ProbeEnabled = viper.GetBool("probe_enabled")
	}
	if envInterval := viper.GetDuration("probe_interval"); envInterval > 0 {
		globalConfig.ProbeInterval = envInterval
	}
	if envCapacity := viper.GetInt64("storage_capacity_bytes"); envCapacity > 0 {
		globalConfig.StorageCapacityBytes = envCapacity
	}
}

func initLogging() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=8080",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)

	rootCmd.PersistentFlags().StringSliceVarP(
		&globalConfig.AppBasicAuthCredential,
		"basic-auth", "b",
		globalConfig.AppBasicAuthCredential,
		"basic auth credential | -b=yourUsername:yourPassword",
	)

	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppBasePath,
		"base-path", "",
		globalConfig.AppBasePath,
		`base path for mounting the API | example: --base-path="/savora"`,
	)

	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.RemoteBaseURL,
		"remote-url", "",
		globalConfig.RemoteBaseURL,
		`base URL of the remote recipe service | example: --remote-url="https://api.savora.app"`,
	)

	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.DBName,
		"db-name", "",
		globalConfig.DBName,
		`local store database (file path for sqlite) | example: --db-name="storages/engine.db"`,
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}
