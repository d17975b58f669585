package constants

const (
	AppName            = "studyflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/studyflow/studyflow.db"
	Version            = "v0.3.0"

	// ConnectionEnvVar overrides --config when set
	ConnectionEnvVar = "STUDYFLOW_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studyflow-"
	BackupFileSuffix = ".db"

	// Lock constants
	PlanLockfileName = "studyflow-plan.lock"

	// MaxPlanHistory is how many plan versions the store keeps
	MaxPlanHistory = 5

	// API server
	DefaultServeAddr = "127.0.0.1:7420"

	// Google Calendar
	GoogleCredentialsFile = "credentials.json"
	GoogleTokenFile       = "google-token.json"
	GoogleAuthPort        = "6789"
	GoogleSessionProperty = "studyflow_session_id"
	GoogleVersionProperty = "studyflow_plan_version"
)
