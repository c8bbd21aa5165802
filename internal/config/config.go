package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken      string `env:"DISCORD_TOKEN,required"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	EmbedColor        int    `env:"EMBED_COLOR" envDefault:"10713958"`
	InitSlashCommands bool   `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse environment: %v", err)
	}
	return cfg
}
