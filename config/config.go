package config

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/logging"
	"github.com/linesmerrill/court-docket-api/models"
)

// Store backends
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	StoreBackend   string
	Environment    string
	Pepper         string
	SweepSchedule  string
	RequestTimeout time.Duration
}

// New sets up all config related services
func New() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("DB_NAME", "court-docket")
	v.SetDefault("STORE_BACKEND", BackendMongo)
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("HEARING_SWEEP_SCHEDULE", "0 2 * * *")
	v.SetDefault("REQUEST_TIMEOUT", "10s")

	conf := &Config{
		URL:            v.GetString("DB_URI"),
		DatabaseName:   v.GetString("DB_NAME"),
		BaseURL:        v.GetString("BASE_URL"),
		Port:           v.GetString("PORT"),
		StoreBackend:   v.GetString("STORE_BACKEND"),
		Environment:    v.GetString("ENVIRONMENT"),
		Pepper:         v.GetString("PASSWORD_PEPPER"),
		SweepSchedule:  v.GetString("HEARING_SWEEP_SCHEDULE"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
	}

	//setup zap logger and replace default logger
	logger, err := logging.New(conf.Environment)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With("error", err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errorText(err)},
	})
	_, _ = w.Write(b)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
