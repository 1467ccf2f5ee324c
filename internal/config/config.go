// Package config loads the single YAML file shared by all service modes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"knowledge-cafe/internal/domain"
)

type DB struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"database"`
}

func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Pass, d.Host, d.Port, d.Name)
}

type MQ struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
}

func (m MQ) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", m.User, m.Pass, m.Host, m.Port)
}

type Redis struct {
	Addr       string `yaml:"addr"`
	DB         int    `yaml:"db"`
	CartTTLHrs int    `yaml:"cart_ttl_hours"`
}

// Cafe carries the business policy knobs: hours, scheduling window and cup
// fees. Defaults match the menu card.
type Cafe struct {
	Timezone        string `yaml:"timezone"`
	OpenHour        int    `yaml:"open_hour"`
	CloseHour       int    `yaml:"close_hour"`
	MaxScheduleDays int    `yaml:"max_schedule_days"`
	ToGoFeeCents    int64  `yaml:"togo_fee_cents"`
	CupDepositCents int64  `yaml:"cup_deposit_cents"`
}

// Queue makes the dual freshness mechanism explicit configuration: the
// subscription gives low latency, polling is the correctness backstop.
type Queue struct {
	PollIntervalSeconds   int `yaml:"poll_interval_seconds"`
	StalenessBoundSeconds int `yaml:"staleness_bound_seconds"`
}

type Payment struct {
	TerminalURL         string `yaml:"terminal_url"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	PollTimeoutSeconds  int    `yaml:"poll_timeout_seconds"`
}

type App struct {
	Database     DB      `yaml:"database"`
	Rabbit       MQ      `yaml:"rabbitmq"`
	Redis        Redis   `yaml:"redis"`
	Cafe         Cafe    `yaml:"cafe"`
	Queue        Queue   `yaml:"queue"`
	Payment      Payment `yaml:"payment"`
	FallbackPath string  `yaml:"fallback_path"`
}

func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, err
	}
	a := defaults()
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if a.Database.Host == "" || a.Rabbit.Host == "" {
		return App{}, errors.New("invalid config: missing database/rabbitmq host")
	}
	a.floorIntervals()
	return a, nil
}

// floorIntervals resets non-positive polling knobs to their defaults. A zero
// interval would feed time.NewTicker, which panics.
func (a *App) floorIntervals() {
	def := defaults()
	if a.Queue.PollIntervalSeconds <= 0 {
		a.Queue.PollIntervalSeconds = def.Queue.PollIntervalSeconds
	}
	if a.Queue.StalenessBoundSeconds <= 0 {
		a.Queue.StalenessBoundSeconds = def.Queue.StalenessBoundSeconds
	}
	if a.Payment.PollIntervalSeconds <= 0 {
		a.Payment.PollIntervalSeconds = def.Payment.PollIntervalSeconds
	}
	if a.Payment.PollTimeoutSeconds <= 0 {
		a.Payment.PollTimeoutSeconds = def.Payment.PollTimeoutSeconds
	}
}

func defaults() App {
	return App{
		Redis: Redis{Addr: "localhost:6379", CartTTLHrs: 24},
		Cafe: Cafe{
			Timezone:        "Europe/Berlin",
			OpenHour:        11,
			CloseHour:       14,
			MaxScheduleDays: 7,
			ToGoFeeCents:    20,
			CupDepositCents: 200,
		},
		Queue:        Queue{PollIntervalSeconds: 3, StalenessBoundSeconds: 5},
		Payment:      Payment{PollIntervalSeconds: 2, PollTimeoutSeconds: 120},
		FallbackPath: "orders-fallback.jsonl",
	}
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}

// Location resolves the café timezone; scheduling validation is always done
// in local business time.
func (c Cafe) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c Cafe) ToGoFee() domain.Cents    { return domain.Cents(c.ToGoFeeCents) }
func (c Cafe) CupDeposit() domain.Cents { return domain.Cents(c.CupDepositCents) }

func (q Queue) PollInterval() time.Duration {
	return time.Duration(q.PollIntervalSeconds) * time.Second
}

func (p Payment) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

func (p Payment) PollTimeout() time.Duration {
	return time.Duration(p.PollTimeoutSeconds) * time.Second
}

func (r Redis) CartTTL() time.Duration {
	return time.Duration(r.CartTTLHrs) * time.Hour
}
