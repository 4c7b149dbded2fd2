package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongoDB   = "mongodb"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

type Config struct {
	ServicePort          string
	MetricsPort          string
	LogLevel             string
	MidtransConfig       MidtransConfig
	NotificationConfig   NotificationConfig
	StoreConfig          StoreConfig
	PostgreSQLConfig     PostgreSQLConfig
	MongoDBConfig        MongoDBConfig
	FirestoreConfig      FirestoreConfig
	KafkaConfig          KafkaConfig
	TracingConfig        TracingConfig
	PendingSweepInterval time.Duration
}

type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
}

type NotificationConfig struct {
	// StrictMode rejects notifications that cannot be verified instead of trusting them.
	StrictMode bool
}

type StoreConfig struct {
	Driver string
}

type PostgreSQLConfig struct {
	DBHost     string
	DBName     string
	DBPort     string
	DBUsername string
	DBPassword string
}

type MongoDBConfig struct {
	URI    string
	DBName string
}

type FirestoreConfig struct {
	ProjectID      string
	ServiceAccount string
	Collection     string
}

type KafkaConfig struct {
	BrokerAddress string
	BrokerTopic   string
}

type TracingConfig struct {
	CollectorHost string
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort: getenvDefault("SERVICE_PORT", "8080"),
		MetricsPort: getenvDefault("METRICS_PORT", "9090"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),
		MidtransConfig: MidtransConfig{
			ServerKey:    firstNonEmpty(os.Getenv("MIDTRANS_SERVER_KEY"), os.Getenv("SECRET"), os.Getenv("MIDTRANS_SERVER")),
			ClientKey:    firstNonEmpty(os.Getenv("MIDTRANS_CLIENT_KEY"), os.Getenv("NEXT_PUBLIC_CLIENT")),
			IsProduction: parseBool(os.Getenv("MIDTRANS_IS_PRODUCTION")),
		},
		NotificationConfig: NotificationConfig{
			StrictMode: parseBool(os.Getenv("NOTIFICATION_STRICT_MODE")),
		},
		StoreConfig: StoreConfig{
			Driver: strings.ToLower(getenvDefault("ORDER_STORE", StoreFirestore)),
		},
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		MongoDBConfig: MongoDBConfig{
			URI:    getenvDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvDefault("MONGODB_DATABASE", "payment_bridge"),
		},
		FirestoreConfig: FirestoreConfig{
			ProjectID:      os.Getenv("FIREBASE_PROJECT_ID"),
			ServiceAccount: os.Getenv("FIREBASE_SERVICE_ACCOUNT"),
			Collection:     getenvDefault("ORDERS_COLLECTION", "orders"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress: os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:   getenvDefault("BROKER_TOPIC", "order-status"),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
	}

	if v := os.Getenv("PENDING_SWEEP_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err == nil && interval > 0 {
			conf.PendingSweepInterval = interval
		}
	}

	return &conf
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}
