package config

import (
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	Port      string
	DBDriver  string
	DBDSN     string
	UploadDir string

	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string

	MidtransServerKey  string
	MidtransProduction bool

	JWTSecret string
}

func Load() Config {
	return Config{
		Port:      getenv("PORT", "8080"),
		DBDriver:  getenv("DB_DRIVER", "mysql"),
		DBDSN:     getenv("DB_DSN", "canteen:canteen@tcp(127.0.0.1:3306)/canteen?charset=utf8mb4&parseTime=True&loc=Local"),
		UploadDir: getenv("UPLOAD_DIR", "public/uploads"),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "canteen.events"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: os.Getenv("MIDTRANS_ENV") == "production",

		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

// InitDB opens the configured database. sqlite is the local/dev
// fallback; production runs on mysql.
func InitDB(cfg Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return gorm.Open(sqlite.Open(getenv("SQLITE_PATH", "canteen.db")), &gorm.Config{})
	}
	return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
