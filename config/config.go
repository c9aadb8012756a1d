/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// DEFAULT_RADIUS_METERS is the search radius applied when a seeker does not pass one.
	DEFAULT_RADIUS_METERS = 15000

	// DEFAULT_RESPONSE_TTL_HOURS is how long a provider has to act on a lead response.
	DEFAULT_RESPONSE_TTL_HOURS = 24
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"LEADGRID_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"LEADGRID_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"LEADGRID_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"LEADGRID_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"LEADGRID_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"LEADGRID_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"LEADGRID_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"LEADGRID_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"LEADGRID_REDIS_SKIP_TLS_VERIFY"`
}

type TypeSenseConfig struct {
	Dns string `json:"dns" envconfig:"LEADGRID_TYPESENSE_DNS"`
}

// MatchingConfig controls the fan-out behaviour of lead submission.
type MatchingConfig struct {
	DefaultRadiusMeters int `json:"default_radius_meters" envconfig:"LEADGRID_MATCHING_DEFAULT_RADIUS_METERS"`
	ResponseTTLHours    int `json:"response_ttl_hours" envconfig:"LEADGRID_MATCHING_RESPONSE_TTL_HOURS"`
}

// PaymentConfig describes the external payment provider used to gate lead acceptance.
// AcceptanceFee is the fixed micro-fee, expressed in the smallest unit of Currency.
type PaymentConfig struct {
	ProviderURL   string `json:"provider_url" envconfig:"LEADGRID_PAYMENT_PROVIDER_URL"`
	KeyID         string `json:"key_id" envconfig:"LEADGRID_PAYMENT_KEY_ID"`
	KeySecret     string `json:"key_secret" envconfig:"LEADGRID_PAYMENT_KEY_SECRET"`
	AcceptanceFee int64  `json:"acceptance_fee" envconfig:"LEADGRID_PAYMENT_ACCEPTANCE_FEE"`
	Currency      string `json:"currency" envconfig:"LEADGRID_PAYMENT_CURRENCY"`
	Timeout       int    `json:"timeout" envconfig:"LEADGRID_PAYMENT_TIMEOUT"`
}

// QueueConfig holds the asynq queue names used by the engine.
type QueueConfig struct {
	NewLeadQueue        string `json:"new_lead_queue" envconfig:"LEADGRID_QUEUE_NEW_LEAD"`
	WebhookQueue        string `json:"webhook_queue" envconfig:"LEADGRID_QUEUE_WEBHOOK"`
	ResponseExpiryQueue string `json:"response_expiry_queue" envconfig:"LEADGRID_QUEUE_RESPONSE_EXPIRY"`
	IndexQueue          string `json:"index_queue" envconfig:"LEADGRID_QUEUE_INDEX"`
	MonitoringPort      string `json:"monitoring_port" envconfig:"LEADGRID_QUEUE_MONITORING_PORT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"LEADGRID_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"LEADGRID_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"LEADGRID_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"LEADGRID_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	TypeSense    TypeSenseConfig  `json:"typesense"`
	TypeSenseKey string           `json:"type_sense_key" envconfig:"LEADGRID_TYPESENSE_KEY"`
	Matching     MatchingConfig   `json:"matching"`
	Payment      PaymentConfig    `json:"payment"`
	Queue        QueueConfig      `json:"queue"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`

	EnableTelemetry bool `json:"enable_telemetry" envconfig:"LEADGRID_ENABLE_TELEMETRY"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("leadgrid", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called leadgrid.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Leadgrid Server"
	}

	if cnf.TypeSense.Dns == "" {
		cnf.TypeSense.Dns = "http://typesense:8108"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Matching.DefaultRadiusMeters <= 0 {
		cnf.Matching.DefaultRadiusMeters = DEFAULT_RADIUS_METERS
	}
	if cnf.Matching.ResponseTTLHours <= 0 {
		cnf.Matching.ResponseTTLHours = DEFAULT_RESPONSE_TTL_HOURS
	}

	if cnf.Payment.Currency == "" {
		cnf.Payment.Currency = "INR"
	}
	if cnf.Payment.AcceptanceFee <= 0 {
		// 500 in the smallest unit of the configured currency
		cnf.Payment.AcceptanceFee = 500
	}
	if cnf.Payment.Timeout <= 0 {
		cnf.Payment.Timeout = 15
	}

	if cnf.Queue.NewLeadQueue == "" {
		cnf.Queue.NewLeadQueue = "new:lead"
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "new:webhook"
	}
	if cnf.Queue.ResponseExpiryQueue == "" {
		cnf.Queue.ResponseExpiryQueue = "new:response-expiry"
	}
	if cnf.Queue.IndexQueue == "" {
		cnf.Queue.IndexQueue = "new:index"
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5001"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Matching.DefaultRadiusMeters <= 0 {
		mockConfig.Matching.DefaultRadiusMeters = DEFAULT_RADIUS_METERS
	}
	if mockConfig.Matching.ResponseTTLHours <= 0 {
		mockConfig.Matching.ResponseTTLHours = DEFAULT_RESPONSE_TTL_HOURS
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
