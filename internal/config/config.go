package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTSecret       string
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig

	// AppTimezone é o fuso padrão do processo: fallback da resolução por
	// academia e fuso operacional dos gatilhos de cron.
	AppTimezone string

	FaceAPI FaceAPIConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// FaceAPIConfig descreve o serviço externo de reconhecimento facial.
// Campos vazios significam integração não configurada (a chamada por foto
// degrada para resposta "pendente integração").
type FaceAPIConfig struct {
	Endpoint      string
	Key           string
	PersonGroupID string
	Threshold     float64
}

// Configured indica se o serviço externo pode ser chamado.
func (f FaceAPIConfig) Configured() bool {
	return f.Endpoint != "" && f.Key != "" && f.PersonGroupID != ""
}

const defaultTimezone = "America/Sao_Paulo"

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}

	cfg.AppTimezone = strings.TrimSpace(getEnv("APP_TIMEZONE", defaultTimezone))
	if cfg.AppTimezone == "" {
		cfg.AppTimezone = defaultTimezone
	}
	if _, err := time.LoadLocation(cfg.AppTimezone); err != nil {
		return nil, errors.New("APP_TIMEZONE inválido")
	}

	cfg.FaceAPI = FaceAPIConfig{
		Endpoint:      strings.TrimSpace(getEnv("FACE_API_ENDPOINT", "")),
		Key:           strings.TrimSpace(getEnv("FACE_API_KEY", "")),
		PersonGroupID: strings.TrimSpace(getEnv("FACE_API_PERSON_GROUP_ID", "")),
	}
	threshold, err := parseFloatEnv("FACE_MATCH_THRESHOLD", 0.5)
	if err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.New("FACE_MATCH_THRESHOLD deve estar entre 0 e 1")
	}
	cfg.FaceAPI.Threshold = threshold

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return f, nil
}
