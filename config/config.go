/*
Copyright 2024 Blnk Finance Authors.

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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	DEFAULT_HOME_CLIENT_ID    = 1000000
	DEFAULT_LOCK_TIMEOUT_SEC  = 30
	DEFAULT_OTP_PERIOD_SEC    = 300
	DEFAULT_BALANCE_CACHE_TTL = 60

	OTPProviderHTTP = "http"
	OTPProviderTOTP = "totp"
)

var (
	DefaultMinimumWithdrawal = decimal.NewFromInt(10)
	DefaultMaximumWithdrawal = decimal.NewFromInt(10000)
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"MEMBERHUB_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"MEMBERHUB_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"MEMBERHUB_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"MEMBERHUB_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"MEMBERHUB_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"MEMBERHUB_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"MEMBERHUB_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"MEMBERHUB_REDIS_DNS"`
}

// WithdrawalConfig holds the bounds and ordering rules applied to every withdrawal.
// MaximumAmount is exclusive: a request equal to it is rejected.
type WithdrawalConfig struct {
	MinimumAmount  decimal.Decimal `json:"minimum_amount" envconfig:"MEMBERHUB_WITHDRAWAL_MINIMUM_AMOUNT"`
	MaximumAmount  decimal.Decimal `json:"maximum_amount" envconfig:"MEMBERHUB_WITHDRAWAL_MAXIMUM_AMOUNT"`
	HomeClientID   int             `json:"home_client_id" envconfig:"MEMBERHUB_WITHDRAWAL_HOME_CLIENT_ID"`
	LockEnabled    bool            `json:"lock_enabled" envconfig:"MEMBERHUB_WITHDRAWAL_LOCK_ENABLED"`
	LockTimeoutSec int             `json:"lock_timeout_sec" envconfig:"MEMBERHUB_WITHDRAWAL_LOCK_TIMEOUT_SEC"`
}

type OTPConfig struct {
	Provider  string `json:"provider" envconfig:"MEMBERHUB_OTP_PROVIDER"`
	Url       string `json:"url" envconfig:"MEMBERHUB_OTP_URL"`
	ApiKey    string `json:"api_key" envconfig:"MEMBERHUB_OTP_API_KEY"`
	Secret    string `json:"secret" envconfig:"MEMBERHUB_OTP_SECRET"`
	PeriodSec uint   `json:"period_sec" envconfig:"MEMBERHUB_OTP_PERIOD_SEC"`
}

type BalanceCacheConfig struct {
	TTLSec int `json:"ttl_sec" envconfig:"MEMBERHUB_BALANCE_CACHE_TTL_SEC"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"MEMBERHUB_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"MEMBERHUB_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"MEMBERHUB_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type WebhookConfig struct {
	Url     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Slack   SlackWebhook  `json:"slack"`
	Webhook WebhookConfig `json:"webhook"`
}

type Configuration struct {
	ProjectName     string             `json:"project_name" envconfig:"MEMBERHUB_PROJECT_NAME"`
	EnableTelemetry bool               `json:"enable_telemetry" envconfig:"MEMBERHUB_ENABLE_TELEMETRY"`
	Server          ServerConfig       `json:"server"`
	DataSource      DataSourceConfig   `json:"data_source"`
	Redis           RedisConfig        `json:"redis"`
	Withdrawal      WithdrawalConfig   `json:"withdrawal"`
	OTP             OTPConfig          `json:"otp"`
	BalanceCache    BalanceCacheConfig `json:"balance_cache"`
	Notification    Notification       `json:"notification"`
	RateLimit       RateLimitConfig    `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("memberhub", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called memberhub.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "MemberHub"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if err := cnf.Withdrawal.addDefaults(); err != nil {
		return err
	}

	if err := cnf.OTP.addDefaults(); err != nil {
		return err
	}

	if cnf.BalanceCache.TTLSec <= 0 {
		cnf.BalanceCache.TTLSec = DEFAULT_BALANCE_CACHE_TTL
	}

	if cnf.Withdrawal.LockEnabled && cnf.Redis.Dns == "" {
		return errors.New("redis DNS is required when withdrawal lock is enabled")
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
		defaultCleanup := 10800
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

func (w *WithdrawalConfig) addDefaults() error {
	if w.MinimumAmount.IsZero() {
		w.MinimumAmount = DefaultMinimumWithdrawal
	}
	if w.MaximumAmount.IsZero() {
		w.MaximumAmount = DefaultMaximumWithdrawal
	}
	if w.MinimumAmount.IsNegative() {
		return errors.New("withdrawal minimum amount cannot be negative")
	}
	if w.MaximumAmount.LessThanOrEqual(w.MinimumAmount) {
		return errors.New("withdrawal maximum amount must be greater than the minimum amount")
	}
	if w.HomeClientID == 0 {
		w.HomeClientID = DEFAULT_HOME_CLIENT_ID
	}
	if w.LockTimeoutSec <= 0 {
		w.LockTimeoutSec = DEFAULT_LOCK_TIMEOUT_SEC
	}
	return nil
}

func (o *OTPConfig) addDefaults() error {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = OTPProviderHTTP
	}
	if o.PeriodSec == 0 {
		o.PeriodSec = DEFAULT_OTP_PERIOD_SEC
	}
	switch o.Provider {
	case OTPProviderHTTP:
		return nil
	case OTPProviderTOTP:
		if o.Secret == "" {
			return errors.New("otp secret is required for the totp provider")
		}
		return nil
	default:
		return errors.New("otp provider must be either http or totp")
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
