package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

func New(loc string) (*Config, error) {
	var c Config

	f, err := os.Open(loc)
	if err != nil {
		log.Println("Config error", err)
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&c); err != nil {
		log.Println("Config error", err)
		return nil, err
	}

	if c.DBPath == "" || c.DBName == "" {
		return nil, ErrInvalidConfig
	}

	return &c, nil
}

type Config struct {
	Host string `json:"host"`
	Port string `json:"port"`

	Sandbox bool `json:"sandbox"`

	DBPath string `json:"dbPath"`
	DBName string `json:"dbName"`

	// Where uploaded order screenshots end up and how they are served
	ImageDir     string `json:"imageDir"`
	ImageUrlPath string `json:"imageUrlPath"`
	ServerURL    string `json:"serverUrl"`

	Lob struct {
		Key      string `json:"key"`
		Addr     string `json:"addr"`
		BankAcct string `json:"bankAcct"`
	} `json:"lob"`

	Bucket struct {
		User        string   `json:"user"`
		Login       string   `json:"login"`
		Token       string   `json:"token"`
		Campaign    string   `json:"campaign"`
		Application string   `json:"application"`
		Payment     string   `json:"payment"`
		All         []string `json:"all"`
	} `json:"bucket"`
}

func (c *Config) AllBuckets() []string {
	if len(c.Bucket.All) > 0 {
		return c.Bucket.All
	}
	return []string{
		c.Bucket.User, c.Bucket.Login, c.Bucket.Token,
		c.Bucket.Campaign, c.Bucket.Application, c.Bucket.Payment,
		"index",
	}
}
