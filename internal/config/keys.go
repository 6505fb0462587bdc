package config

const (
	KeyPostgresURL    = "postgres_url"
	KeyLogLevel       = "log_level"
	KeyEngineCatalog  = "engine_catalog_path"
	KeyEngineName     = "engine_name"
	KeyParserBinary   = "parser_binary"
	KeyParseTimeout   = "parse_timeout_seconds"
	KeyOutDir         = "out_dir"
	KeyHistoryEnabled = "history_enabled"
	KeyFetchDir       = "fetch_dir"
	KeyGitHubToken    = "github_token"
	KeyBatchWorkers   = "batch_workers"
)
