package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	// параметры резолвера
	FuzzyThreshold int // инклюзивный порог принятия fuzzy-совпадения (0..100)
	TopN           int // размер топа канонических id в аналитике
	Workers        int // 0 = NumCPU, выставляется в main
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8083"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	threshold, _ := strconv.Atoi(getenv("FUZZY_THRESHOLD", "80"))
	topN, _ := strconv.Atoi(getenv("TOP_N", "10"))
	workers, _ := strconv.Atoi(getenv("RESOLVE_WORKERS", "0"))
	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           port,
		AllowOrigins:   origins,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MaxUploadMB:    mb,
		LogFile:        getenv("LOG_FILE", "logs/sku-mapper.log"),
		FuzzyThreshold: threshold,
		TopN:           topN,
		Workers:        workers,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
