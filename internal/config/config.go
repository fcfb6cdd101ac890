package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type DonationConfig struct {
	Env           string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer    `yaml:"http_server"`
	GRPCServer    `yaml:"grpc_server"`
	DonationDB    `yaml:"donation_db"`
	LogConfig     `yaml:"log_config"`
	SMTP          `yaml:"smtp"`
	Stripe        `yaml:"stripe"`
	Dashboard     `yaml:"dashboard"`
	Receipts      `yaml:"receipts"`
	Issuer        `yaml:"issuer"`
	KafkaService  `yaml:"kafka-service"`
	ObjectStorage `yaml:"object_storage"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"5000"`
	PublicPrefix    string        `yaml:"public_prefix" env:"PUBLIC_DONATION_PREFIX" env-default:"/donation"`
	PublicBaseURL   string        `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	PublicWebDir    string        `yaml:"public_web_dir" env:"PUBLIC_WEB_DIR" env-default:"./public"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT"`
}

type DonationDB struct {
	Dsn            string `yaml:"dsn" env:"DB_DSN"`
	Host           string `yaml:"host" env:"DB_HOST" env-default:"127.0.0.1"`
	Port           string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-default:"kifukin_user"`
	Password       string `yaml:"password" env:"DB_PASSWORD"`
	Name           string `yaml:"name" env:"DB_NAME" env-default:"donation"`
	SSLMode        string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	// TimeZone is the session zone; normalize copies it from Receipts.TimeZone.
	TimeZone string `yaml:"-"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type SMTP struct {
	Server   string        `yaml:"server" env:"SMTP_SERVER" env-default:"smtp.gmail.com"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string        `yaml:"user" env:"SMTP_USER"`
	Password string        `yaml:"password" env:"SMTP_PASS"`
	From     string        `yaml:"from" env:"FROM_MAIL"`
	Timeout  time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"20s"`
}

type Stripe struct {
	Mode     string `yaml:"mode" env:"STRIPE_MODE" env-default:"test"`
	Currency string `yaml:"currency" env:"STRIPE_CURRENCY" env-default:"jpy"`

	LegacySecretKey      string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	LegacyPublishableKey string `yaml:"publishable_key" env:"STRIPE_PUBLISHABLE_KEY"`
	LegacyWebhookSecret  string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`

	TestSecretKey      string `yaml:"test_secret_key" env:"STRIPE_TEST_SECRET_KEY"`
	TestPublishableKey string `yaml:"test_publishable_key" env:"STRIPE_TEST_PUBLISHABLE_KEY"`
	TestWebhookSecret  string `yaml:"test_webhook_secret" env:"STRIPE_TEST_WEBHOOK_SECRET"`

	LiveSecretKey      string `yaml:"live_secret_key" env:"STRIPE_LIVE_SECRET_KEY"`
	LivePublishableKey string `yaml:"live_publishable_key" env:"STRIPE_LIVE_PUBLISHABLE_KEY"`
	LiveWebhookSecret  string `yaml:"live_webhook_secret" env:"STRIPE_LIVE_WEBHOOK_SECRET"`

	SuccessURL string `yaml:"success_url" env:"STRIPE_SUCCESS_URL"`
	CancelURL  string `yaml:"cancel_url" env:"STRIPE_CANCEL_URL"`
}

type Dashboard struct {
	AdminUsername string        `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	UserUsername  string        `yaml:"user_username" env:"USER_USERNAME" env-default:"user"`
	UserPassword  string        `yaml:"user_password" env:"USER_PASSWORD"`
	SessionSecret string        `yaml:"session_secret" env:"FLASK_SECRET_KEY"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"DASHBOARD_SESSION_TTL" env-default:"12h"`
	ListLimit     int           `yaml:"list_limit" env:"DASHBOARD_LIST_LIMIT" env-default:"100"`
}

type Receipts struct {
	Dir                string        `yaml:"dir" env:"RECEIPT_DIR"`
	Retention          time.Duration `yaml:"retention" env:"RECEIPT_RETENTION" env-default:"24h"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval" env:"RECEIPT_CLEANUP_INTERVAL" env-default:"1h"`
	MinAmount          int64         `yaml:"min_amount" env:"DONATION_MIN_AMOUNT" env-default:"1000"`
	MaxAmount          int64         `yaml:"max_amount" env:"DONATION_MAX_AMOUNT" env-default:"1000000"`
	BankTransferInfo   string        `yaml:"bank_transfer_info" env:"BANK_TRANSFER_INFO"`
	CreditCardInputURL string        `yaml:"credit_card_input_url" env:"CREDIT_CARD_INPUT_URL"`
	TimeZone           string        `yaml:"time_zone" env:"DONATION_TIME_ZONE" env-default:"Asia/Tokyo"`
}

type Issuer struct {
	Name               string `yaml:"name" env:"ISSUER_NAME" env-default:"NPO法人ほっこり サポートホーム／ほっこりくろちゃん"`
	Address            string `yaml:"address" env:"ISSUER_ADDRESS" env-default:"〒612-8403 京都市伏見区深草ヲカヤ町23-6 サポートホーム"`
	Signature          string `yaml:"signature" env:"ISSUER_SIGNATURE" env-default:"NPO法人ほっこり"`
	SealImagePath      string `yaml:"seal_image_path" env:"SEAL_IMAGE_PATH" env-default:"assets/seals/issuer_seal.png"`
	SignatureImagePath string `yaml:"signature_image_path" env:"SIGNATURE_IMAGE_PATH" env-default:"assets/seals/issuer_signature.png"`
	FontPath           string `yaml:"font_path" env:"RECEIPT_FONT_PATH"`
}

type KafkaService struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env:"KAFKA_RECEIPT_TOPIC" env-default:"receipt-events"`
}

type ObjectStorage struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"donation-receipts"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
}

func MustLoad() *DonationConfig {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return cfg
}

// Load reads the YAML file named by DONATION_CONFIG_PATH when set (env vars
// still override it), otherwise the environment alone.
func Load() (*DonationConfig, error) {
	var cfg DonationConfig

	configPath := os.Getenv("DONATION_CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

func (cfg *DonationConfig) normalize() {
	cfg.HTTPServer.PublicPrefix = strings.TrimRight(strings.TrimSpace(cfg.HTTPServer.PublicPrefix), "/")
	cfg.HTTPServer.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.HTTPServer.PublicBaseURL), "/")
	cfg.SMTP.Password = strings.ReplaceAll(cfg.SMTP.Password, " ", "")
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	cfg.Stripe.Mode = NormalizeStripeMode(cfg.Stripe.Mode)
	cfg.Stripe.Currency = strings.ToLower(strings.TrimSpace(cfg.Stripe.Currency))
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "jpy"
	}
	cfg.Dashboard.AdminUsername = strings.TrimSpace(cfg.Dashboard.AdminUsername)
	if cfg.Dashboard.AdminUsername == "" {
		cfg.Dashboard.AdminUsername = "admin"
	}
	cfg.Dashboard.UserUsername = strings.TrimSpace(cfg.Dashboard.UserUsername)
	if cfg.Dashboard.UserUsername == "" {
		cfg.Dashboard.UserUsername = "user"
	}
	if cfg.Dashboard.ListLimit <= 0 {
		cfg.Dashboard.ListLimit = 100
	}
	if cfg.Receipts.Dir == "" {
		cfg.Receipts.Dir = fmt.Sprintf("%s/donation_receipts_%d", os.TempDir(), os.Geteuid())
	}
	cfg.Receipts.BankTransferInfo = ParseMultilineEnv(cfg.Receipts.BankTransferInfo)
	cfg.Receipts.CreditCardInputURL = strings.TrimSpace(cfg.Receipts.CreditCardInputURL)
	cfg.DonationDB.TimeZone = cfg.Receipts.ZoneName()
}

// DSN prefers an explicit DB_DSN and otherwise assembles one from the parts.
func (db DonationDB) DSN() string {
	if db.Dsn != "" {
		return db.Dsn
	}
	zone := db.TimeZone
	if zone == "" {
		zone = defaultTimeZone
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode, zone,
	)
}

func NormalizeStripeMode(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "live", "production", "prod":
		return "live"
	default:
		return "test"
	}
}

// Keys returns the secret, publishable and webhook keys for the active mode,
// falling back to the single-key variables.
func (s Stripe) Keys() (secret, publishable, webhook string) {
	pick := func(preferred, legacy string) string {
		if v := strings.TrimSpace(preferred); v != "" {
			return v
		}
		return strings.TrimSpace(legacy)
	}
	if s.Mode == "live" {
		return pick(s.LiveSecretKey, s.LegacySecretKey),
			pick(s.LivePublishableKey, s.LegacyPublishableKey),
			pick(s.LiveWebhookSecret, s.LegacyWebhookSecret)
	}
	return pick(s.TestSecretKey, s.LegacySecretKey),
		pick(s.TestPublishableKey, s.LegacyPublishableKey),
		pick(s.TestWebhookSecret, s.LegacyWebhookSecret)
}

// ParseMultilineEnv turns escaped newlines ("\n", "¥n") in a single-line env
// value into real ones. Values like "支店n普通 1234n口座名義" that lost their
// backslash are split on "n" when every part is non-empty.
func ParseMultilineEnv(value string) string {
	normalized := strings.NewReplacer(
		"\r\n", "\n",
		`\r\n`, "\n",
		`\n`, "\n",
		"¥n", "\n",
	).Replace(value)
	normalized = strings.TrimSpace(normalized)

	if !strings.Contains(normalized, "\n") && strings.Contains(normalized, "n") {
		parts := strings.Split(normalized, "n")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && allNonEmpty(parts) {
			normalized = strings.Join(parts, "\n")
		}
	}
	return normalized
}

func allNonEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

const defaultTimeZone = "Asia/Tokyo"

// ZoneName is the IANA name behind Location, falling back like Location does.
func (r Receipts) ZoneName() string {
	if r.TimeZone == "" {
		return defaultTimeZone
	}
	if _, err := time.LoadLocation(r.TimeZone); err != nil {
		return defaultTimeZone
	}
	return r.TimeZone
}

// Location resolves the single time zone every timestamp is produced and
// displayed in.
func (r Receipts) Location() *time.Location {
	if r.TimeZone == "" {
		return time.FixedZone("JST", 9*60*60)
	}
	if loc, err := time.LoadLocation(r.TimeZone); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}

func (d Dashboard) Users() map[string]string {
	users := make(map[string]string)
	if d.AdminPassword != "" {
		users[d.AdminUsername] = d.AdminPassword
	}
	if d.UserPassword != "" {
		users[d.UserUsername] = d.UserPassword
	}
	return users
}
