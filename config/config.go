package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"rostrdating"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// 持久化后端：redis, postgres, memory
	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`

	// PostgreSQL 配置
	PostgreSQLHost         string   `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort         string   `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser         string   `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword     string   `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase     string   `env:"POSTGRESQL_DATABASE" envDefault:"rostrdating"`
	PostgreSQLSchema       string   `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode      string   `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle      int      `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen      int      `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`
	PostgreSQLReplicaHosts []string `env:"POSTGRESQL_REPLICA_HOSTS" envSeparator:","` // 只读副本，可选

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"rostr"`

	// RabbitMQ 配置，关闭时领域事件只写日志
	MQEnabled        bool   `env:"MQ_ENABLED" envDefault:"false"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`
	EventsExchange   string `env:"EVENTS_EXCHANGE" envDefault:"rostr.events"`

	// JWT 配置，与托管后端共享同一个 HS256 secret
	JWTSecret        string `env:"JWT_SECRET"`
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`

	// 邀请与深链配置
	DeepLinkScheme     string `env:"DEEPLINK_SCHEME" envDefault:"rostrdating"`
	InviteTTLHours     int    `env:"INVITE_TTL_HOURS" envDefault:"168"`
	DefaultPhoneRegion string `env:"DEFAULT_PHONE_REGION" envDefault:"US"`

	// 短信服务配置
	// AccessKey 通过阿里云 SDK 的环境变量自动获取：ALIBABA_CLOUD_ACCESS_KEY_ID / ALIBABA_CLOUD_ACCESS_KEY_SECRET
	SMSProvider           string `env:"SMS_PROVIDER" envDefault:"mock"` // aliyun, mock
	SMSSignName           string `env:"SMS_SIGN_NAME"`
	SMSInviteTemplateCode string `env:"SMS_INVITE_TEMPLATE_CODE"`
	SMSMaxRecipients      int    `env:"SMS_MAX_RECIPIENTS" envDefault:"20"`
	PhoneHashSalt         string `env:"PHONEHASH_SALT"`
	EncryptionKey         string `env:"ENCRYPTION_KEY"` // 推荐记录中的手机号加密存储，32 字节 AES-256

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// 存储熔断
	StoreBreakerMaxFailures  uint32 `env:"STORE_BREAKER_MAX_FAILURES" envDefault:"5"`
	StoreBreakerResetSeconds int    `env:"STORE_BREAKER_RESET_SECONDS" envDefault:"30"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 在服务启动时检查必填项，测试环境不会调用
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	switch c.StoreBackend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s", c.StoreBackend)
	}

	if c.IsProduction() && c.StoreBackend == "memory" {
		return fmt.Errorf("STORE_BACKEND=memory is not allowed in production")
	}

	if c.InviteTTLHours <= 0 {
		return fmt.Errorf("INVITE_TTL_HOURS must be positive")
	}

	if c.SMSProvider == "aliyun" {
		if c.SMSSignName == "" {
			log.Printf("WARN: SMS_SIGN_NAME is not set, SMS invites may not work properly")
		}
		if c.SMSInviteTemplateCode == "" {
			log.Printf("WARN: SMS_INVITE_TEMPLATE_CODE is not set, SMS invites may not work properly")
		}
	}

	return nil
}

func (c *Config) GetDSN() string {
	return c.dsnForHost(c.PostgreSQLHost)
}

// GetReplicaDSNs 副本沿用主库的端口与账号
func (c *Config) GetReplicaDSNs() []string {
	dsns := make([]string, 0, len(c.PostgreSQLReplicaHosts))
	for _, host := range c.PostgreSQLReplicaHosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		dsns = append(dsns, c.dsnForHost(host))
	}
	return dsns
}

func (c *Config) dsnForHost(host string) string {
	return "host=" + host +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
