package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string
	Build        string
	Debug        bool
	TestMode     bool
	AppName      string
	SecretKey    string
	RollbarToken string
	DataDir      string

	Server struct {
		Host                   string
		Address                string
		DebugAddress           string
		ShutdownTimeout        time.Duration
		SessionExpirationDelta time.Duration
		DisableCSRF            bool
	}

	Accounts struct {
		AdminPassword       string
		AdminPasswordHash   string
		FacultyPassword     string
		FacultyPasswordHash string
	}
}

// NewConfig reads the configuration from defaults, an optional config/.env.<env> file and the environment.
func NewConfig() *Config {
	v := viper.New()

	hostname, _ := os.Hostname()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Attendance Tracker")
	v.SetDefault("secretKey", "x7@k#2mq!v9s$e4r&zt1(wp)n8b^c0d+h6j%yf5u3l_ga")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("dataDir", "data")
	v.SetDefault("server.host", hostname)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.sessionExpirationDelta", 12*time.Hour)
	v.SetDefault("server.disableCSRF", false)
	v.SetDefault("accounts.adminPassword", "admin123")
	v.SetDefault("accounts.adminPasswordHash", "")
	v.SetDefault("accounts.facultyPassword", "faculty123")
	v.SetDefault("accounts.facultyPasswordHash", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		DataDir:      v.GetString("dataDir"),
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugAddress = v.GetString("server.debugAddress")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.SessionExpirationDelta = v.GetDuration("server.sessionExpirationDelta")
	conf.Server.DisableCSRF = v.GetBool("server.disableCSRF")
	conf.Accounts.AdminPassword = v.GetString("accounts.adminPassword")
	conf.Accounts.AdminPasswordHash = v.GetString("accounts.adminPasswordHash")
	conf.Accounts.FacultyPassword = v.GetString("accounts.facultyPassword")
	conf.Accounts.FacultyPasswordHash = v.GetString("accounts.facultyPasswordHash")
	return conf
}
