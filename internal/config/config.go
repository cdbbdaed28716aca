package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	LogDirectory       string
	KnownFacesDir      string
	IntruderDir        string
	LedgerDir          string
	LedgerBackend      string // "xlsx" albo "sqlite"
	DatabasePath       string
	PasswordFile       string
	DetectorModelPath  string
	DetectorConfigPath string
	EmbedderModelPath  string
	DetectionThreshold float64
	MatchTolerance     float64
	CameraReadTimeout  time.Duration
	CycleInterval      time.Duration
	MaxCameraProbe     int
	SpeechCommand      string // puste = bez komunikatów głosowych
	SessionTTL         time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnvAsInt("PORT", 8080),
		LogDirectory:       getEnv("LOG_DIR", filepath.Join(".", "logs")),
		KnownFacesDir:      getEnv("KNOWN_FACES_DIR", filepath.Join(".", "known_faces")),
		IntruderDir:        getEnv("INTRUDER_DIR", filepath.Join(".", "intruder")),
		LedgerDir:          getEnv("LEDGER_DIR", "."),
		LedgerBackend:      getEnv("LEDGER_BACKEND", "xlsx"),
		DatabasePath:       getEnv("DB_PATH", filepath.Join(".", "data", "campus.db")),
		PasswordFile:       getEnv("PASSWORD_FILE", "admin_password.hash"),
		DetectorModelPath:  getEnv("FACE_DETECTOR_MODEL", filepath.Join(".", "models", "res10_300x300_ssd_iter_140000.caffemodel")),
		DetectorConfigPath: getEnv("FACE_DETECTOR_CONFIG", filepath.Join(".", "models", "deploy.prototxt")),
		EmbedderModelPath:  getEnv("FACE_EMBEDDER_MODEL", filepath.Join(".", "models", "nn4.small2.v1.t7")),
		DetectionThreshold: getEnvAsFloat("DETECTION_THRESHOLD", 0.5),
		MatchTolerance:     getEnvAsFloat("MATCH_TOLERANCE", 0.6),
		CameraReadTimeout:  getEnvAsMillis("CAMERA_READ_TIMEOUT_MS", 2000),
		CycleInterval:      getEnvAsMillis("CYCLE_INTERVAL_MS", 30),
		MaxCameraProbe:     getEnvAsInt("MAX_CAMERA_PROBE", 10),
		SpeechCommand:      getEnv("SPEECH_COMMAND", "espeak"),
		SessionTTL:         time.Duration(getEnvAsInt64("SESSION_TTL_HOURS", 12)) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int64) time.Duration {
	return time.Duration(getEnvAsInt64(key, defaultValue)) * time.Millisecond
}
