package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./hangman.db"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game - rules shared by every room. cleanenv applies env-default to any field left
// at zero, so fields where zero is meaningful take their default from config.yml.
type Game struct {
	StartingHealth   int     `yaml:"starting-health" env:"GAME_STARTING_HEALTH" env-default:"6"`
	MaxNameLength    int     `yaml:"max-name-length" env:"GAME_MAX_NAME_LENGTH" env-default:"100"`
	NearMissDistance int     `yaml:"near-miss-distance" env:"GAME_NEAR_MISS_DISTANCE"` // 0 turns the hint off
	GuessRate        float64 `yaml:"guess-rate" env:"GAME_GUESS_RATE" env-default:"5"`
	GuessBurst       int     `yaml:"guess-burst" env:"GAME_GUESS_BURST" env-default:"10"`
	RoomInboxSize    int     `yaml:"room-inbox-size" env:"GAME_ROOM_INBOX_SIZE" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads config.yml, environment variables override the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.Game.StartingHealth <= 0 {
		return fmt.Errorf("game.starting-health must be positive, got %d", that.Game.StartingHealth)
	}

	if that.Game.MaxNameLength <= 0 {
		return fmt.Errorf("game.max-name-length must be positive, got %d", that.Game.MaxNameLength)
	}

	if that.Game.NearMissDistance < 0 {
		return fmt.Errorf("game.near-miss-distance can't be negative, got %d", that.Game.NearMissDistance)
	}

	if that.Game.GuessRate <= 0 || that.Game.GuessBurst <= 0 {
		return fmt.Errorf("game.guess-rate and game.guess-burst must be positive")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
