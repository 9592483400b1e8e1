package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverDynamo   = "dynamo"

	StorageS3    = "s3"
	StorageLocal = "local"

	PushFCM = "fcm"
	PushSNS = "sns"
	PushLog = "log"

	MailSMTP     = "smtp"
	MailSendGrid = "sendgrid"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	StorageBackend    string
	S3BucketName      string
	LocalStorageDir   string
	PublicBaseURL     string
	StorageSigningKey string
	DownloadURLTTL    time.Duration

	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiryDays          int
	RefreshTokenExpiryDays int

	MailProvider   string
	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string

	PushProvider              string
	FirebaseCredentials       string
	SNSRegion                 string
	SNSPlatformApplicationARN string
	PushTimeout               time.Duration

	Square Square

	ReminderLeadDays int
	ReminderLateDays int
	ReminderTimezone string
	PushgatewayURL   string

	AllowedOrigins []string // CORS allowed origins
}

// Square holds the billing API credentials.
type Square struct {
	AccessToken string
	Environment string
	APIVersion  string
	LocationID  string
	Timeout     time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Sessions          string
	UserVerifications string
	Students          string
	PaymentPlans      string
	Invoices          string
	Externships       string
	Documents         string
	Notifications     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DBDriverPostgres)),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			Students:          getEnv("DYNAMO_TABLE_STUDENTS", "students"),
			PaymentPlans:      getEnv("DYNAMO_TABLE_PAYMENT_PLANS", "payment_plans"),
			Invoices:          getEnv("DYNAMO_TABLE_INVOICES", "invoices"),
			Externships:       getEnv("DYNAMO_TABLE_EXTERNSHIPS", "externship_status"),
			Documents:         getEnv("DYNAMO_TABLE_DOCUMENTS", "documents"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "aada-documents"),
		LocalStorageDir:   getEnv("LOCAL_STORAGE_DIR", "./mock_storage"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		StorageSigningKey: getEnv("STORAGE_SIGNING_KEY", ""),
		DownloadURLTTL:    getEnvDuration("DOWNLOAD_URL_TTL", 24*time.Hour),

		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiryDays:          getEnvInt("JWT_EXPIRY_DAYS", 7),
		RefreshTokenExpiryDays: getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30),

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", MailSMTP)),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@aada.edu"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		PushProvider:              strings.ToLower(getEnv("PUSH_PROVIDER", PushLog)),
		FirebaseCredentials:       getEnv("FIREBASE_CREDENTIALS", ""),
		SNSRegion:                 getEnv("SNS_REGION", "us-east-1"),
		SNSPlatformApplicationARN: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),
		PushTimeout:               getEnvDuration("PUSH_TIMEOUT", 10*time.Second),

		Square: Square{
			AccessToken: getEnv("SQUARE_ACCESS_TOKEN", ""),
			Environment: strings.ToLower(getEnv("SQUARE_ENVIRONMENT", "sandbox")),
			APIVersion:  getEnv("SQUARE_API_VERSION", "2024-06-12"),
			LocationID:  getEnv("SQUARE_LOCATION_ID", ""),
			Timeout:     getEnvDuration("SQUARE_TIMEOUT", 10*time.Second),
		},

		ReminderLeadDays: getEnvInt("REMINDER_LEAD_DAYS", 3),
		ReminderLateDays: getEnvInt("REMINDER_LATE_DAYS", 2),
		ReminderTimezone: getEnv("REMINDER_TIMEZONE", "UTC"),
		PushgatewayURL:   getEnv("PUSHGATEWAY_URL", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Requirement names a group of settings that one process cannot start without.
type Requirement string

const (
	RequireDatabase Requirement = "database"
	RequireStorage  Requirement = "storage"
	RequirePush     Requirement = "push"
	RequireMail     Requirement = "mail"
	RequireBilling  Requirement = "billing"
	RequireJWT      Requirement = "jwt"
)

// Validate checks the selectors and the settings each requirement depends on.
// The returned error lists every missing or invalid value.
func (c *Config) Validate(reqs ...Requirement) error {
	var problems []string
	missing := func(name, value string) {
		if value == "" {
			problems = append(problems, name+" is required")
		}
	}
	for _, r := range reqs {
		switch r {
		case RequireDatabase:
			switch c.DBDriver {
			case DBDriverPostgres:
				missing("DATABASE_URL", c.DatabaseURL)
			case DBDriverDynamo:
			default:
				problems = append(problems, fmt.Sprintf("DB_DRIVER %q must be postgres or dynamo", c.DBDriver))
			}
		case RequireStorage:
			switch c.StorageBackend {
			case StorageS3:
				missing("S3_BUCKET_NAME", c.S3BucketName)
			case StorageLocal:
				missing("LOCAL_STORAGE_DIR", c.LocalStorageDir)
				missing("STORAGE_SIGNING_KEY", c.StorageSigningKey)
			default:
				problems = append(problems, fmt.Sprintf("STORAGE_BACKEND %q must be s3 or local", c.StorageBackend))
			}
		case RequirePush:
			switch c.PushProvider {
			case PushFCM:
				missing("FIREBASE_CREDENTIALS", c.FirebaseCredentials)
			case PushSNS:
				missing("SNS_PLATFORM_APPLICATION_ARN", c.SNSPlatformApplicationARN)
			case PushLog:
			default:
				problems = append(problems, fmt.Sprintf("PUSH_PROVIDER %q must be fcm, sns or log", c.PushProvider))
			}
		case RequireMail:
			switch c.MailProvider {
			case MailSMTP:
				missing("SMTP_HOST", c.SMTPHost)
			case MailSendGrid:
				missing("SENDGRID_API_KEY", c.SendGridAPIKey)
			default:
				problems = append(problems, fmt.Sprintf("MAIL_PROVIDER %q must be smtp or sendgrid", c.MailProvider))
			}
		case RequireBilling:
			missing("SQUARE_ACCESS_TOKEN", c.Square.AccessToken)
			if c.Square.Environment != "sandbox" && c.Square.Environment != "production" {
				problems = append(problems, fmt.Sprintf("SQUARE_ENVIRONMENT %q must be sandbox or production", c.Square.Environment))
			}
		case RequireJWT:
			missing("JWT_PRIVATE_KEY_PATH", c.JWTPrivateKeyPath)
			missing("JWT_PUBLIC_KEY_PATH", c.JWTPublicKeyPath)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the timezone used to decide "today" for the reminder job.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ReminderTimezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
