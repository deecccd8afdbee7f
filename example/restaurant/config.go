package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url" validate:"omitempty,url"`
	Model   string `json:"model" validate:"required_with=APIKey"`
	Lang    string `json:"lang"`

	// Domain is an optional YAML file overriding response templates.
	Domain string `json:"domain" validate:"omitempty,file"`

	RedisAddr       string `json:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db" validate:"gte=0,lte=15"`
	TrackerTTLHours int    `json:"tracker_ttl_hours" validate:"gte=0"`
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL:%q, Model:%q, Lang:%q, RedisAddr:%q}", c.BaseURL, c.Model, c.Lang, c.RedisAddr)
}

// loadConfig reads the JSON config file, then lets the environment (and an
// optional .env file) override secrets and endpoints. A missing config file
// means local mode.
func loadConfig(path, envFile string) (*Config, error) {
	var conf Config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(file, &conf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	overrideString(&conf.APIKey, "OPENAI_API_KEY")
	overrideString(&conf.BaseURL, "OPENAI_BASE_URL")
	overrideString(&conf.Model, "OPENAI_MODEL")
	overrideString(&conf.RedisAddr, "REDIS_ADDRESS")
	overrideString(&conf.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB: %w", err)
		}
		conf.RedisDB = db
	}
	if conf.Lang == "" {
		conf.Lang = "English"
	}

	if err := validator.New().Struct(&conf); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &conf, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
