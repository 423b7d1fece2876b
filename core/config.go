package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string
	AppName  string

	// API is the remote LMS backend the client talks to.
	API struct {
		BaseURL        string
		RequestTimeout time.Duration
		PageSize       int
	}

	// Storage is the local session store location.
	Storage struct {
		Path string
	}

	// defaults applied before any persisted preference is found
	DefaultTheme    string
	DefaultCurrency string

	RollbarToken     string
	SendgridApiKey   string
	defaultFromEmail string

	// Server configures the bundled dev API server.
	Server struct {
		Host                      string
		SecretKey                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("apiBaseUrl", "http://localhost:8000/api/")
	v.SetDefault("apiRequestTimeout", 5*time.Second)
	v.SetDefault("apiPageSize", 10)
	v.SetDefault("storagePath", filepath.Join(".", "darasa.db"))
	v.SetDefault("defaultTheme", "light")
	v.SetDefault("defaultCurrency", "USD")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("secretKey", "w3lv-xph)snb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		DefaultTheme:     v.GetString("defaultTheme"),
		DefaultCurrency:  v.GetString("defaultCurrency"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
	conf.API.BaseURL = v.GetString("apiBaseUrl")
	conf.API.RequestTimeout = v.GetDuration("apiRequestTimeout")
	conf.API.PageSize = v.GetInt("apiPageSize")
	conf.Storage.Path = v.GetString("storagePath")
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.SecretKey = v.GetString("secretKey")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")
	return conf
}

func (conf *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(conf.defaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
}
