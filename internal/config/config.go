package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load("manifests/config.env")
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyEngineCatalog, "manifests/engines.yaml")
	viper.SetDefault(KeyParseTimeout, 600)
	viper.SetDefault(KeyOutDir, ".")
	viper.SetDefault(KeyHistoryEnabled, false)
	viper.SetDefault(KeyFetchDir, "ignore/demos")
	viper.SetDefault(KeyBatchWorkers, 4)
}

func PostgresURL() string   { return viper.GetString(KeyPostgresURL) }
func LogLevel() string      { return viper.GetString(KeyLogLevel) }
func EngineCatalog() string { return viper.GetString(KeyEngineCatalog) }
func EngineName() string    { return viper.GetString(KeyEngineName) }
func ParserBinary() string  { return viper.GetString(KeyParserBinary) }
func OutDir() string        { return viper.GetString(KeyOutDir) }
func HistoryEnabled() bool  { return viper.GetBool(KeyHistoryEnabled) }
func FetchDir() string      { return viper.GetString(KeyFetchDir) }
func GitHubToken() string   { return viper.GetString(KeyGitHubToken) }
func BatchWorkers() int     { return viper.GetInt(KeyBatchWorkers) }

func ParseTimeout() time.Duration {
	return time.Duration(viper.GetInt(KeyParseTimeout)) * time.Second
}
