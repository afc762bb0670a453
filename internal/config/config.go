package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds server configuration. Every field can be overridden
// through CHAT_* environment variables.
type ServerConfig struct {
	Addr         string        `envconfig:"ADDR" default:":9090"`
	StaticDir    string        `envconfig:"STATIC_DIR" default:"./static"`
	SendBuffer   int           `envconfig:"SEND_BUFFER" default:"256" validate:"gt=0"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"60s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	PingInterval time.Duration `envconfig:"PING_INTERVAL" default:"54s" validate:"gt=0,ltfield=ReadTimeout"`

	// Input limits
	MaxMessageLength  int `envconfig:"MAX_MESSAGE_LENGTH" default:"1000" validate:"gt=0"`
	MaxUsernameLength int `envconfig:"MAX_USERNAME_LENGTH" default:"50" validate:"gt=0"`
	MaxRoomNameLength int `envconfig:"MAX_ROOM_NAME_LENGTH" default:"50" validate:"gt=0"`

	// Number of history messages replayed on join/rejoin.
	HistoryPageSize int `envconfig:"HISTORY_PAGE_SIZE" default:"100" validate:"gt=0"`
}

// MongoConfig holds MongoDB configuration, overridable through MONGO_*
// environment variables.
type MongoConfig struct {
	URI            string        `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"DATABASE" default:"chat_relay"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s" validate:"gt=0"`
	PingTimeout    time.Duration `envconfig:"PING_TIMEOUT" default:"5s" validate:"gt=0"`
	MaxPoolSize    uint64        `envconfig:"MAX_POOL_SIZE" default:"100"`
	MinPoolSize    uint64        `envconfig:"MIN_POOL_SIZE" default:"5"`
}

// Load reads configuration from the environment, taking an optional .env
// file into account. Missing variables fall back to the struct defaults.
func Load() (*ServerConfig, *MongoConfig, error) {
	_ = godotenv.Load()

	var srv ServerConfig
	if err := envconfig.Process("chat", &srv); err != nil {
		return nil, nil, fmt.Errorf("server config: %w", err)
	}

	var db MongoConfig
	if err := envconfig.Process("mongo", &db); err != nil {
		return nil, nil, fmt.Errorf("mongo config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&srv); err != nil {
		return nil, nil, fmt.Errorf("server config: %w", err)
	}
	if err := validate.Struct(&db); err != nil {
		return nil, nil, fmt.Errorf("mongo config: %w", err)
	}

	return &srv, &db, nil
}

// DefaultServerConfig returns the built-in defaults, mostly used by tests.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:              ":9090",
		StaticDir:         "./static",
		SendBuffer:        256,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      54 * time.Second,
		MaxMessageLength:  1000,
		MaxUsernameLength: 50,
		MaxRoomNameLength: 50,
		HistoryPageSize:   100,
	}
}
