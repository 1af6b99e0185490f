package config

import "os"

type Config struct {
	Addr        string
	MetricsAddr string
	DatabaseURL string
	JWTSecret   string
	UploadDir   string
	// KafkaBrokers is a comma separated broker list; empty disables event publishing.
	KafkaBrokers string
}

func Load() Config {
	return Config{
		Addr:         getenv("POS_ADDR", ":8080"),
		MetricsAddr:  getenv("POS_METRICS_ADDR", ":9100"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		UploadDir:    getenv("POS_UPLOAD_DIR", "./uploads"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
