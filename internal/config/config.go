package config

import "github.com/kelseyhightower/envconfig"

// PoolConfig tunes the pgx pool; zero values leave pgx defaults in place.
// Durations are strings so an unset knob is distinguishable from 0s.
type PoolConfig struct {
	MaxConns          int32  `envconfig:"DB_POOL_MAX_CONNS"`
	MinConns          int32  `envconfig:"DB_POOL_MIN_CONNS"`
	MaxConnLifetime   string `envconfig:"DB_POOL_MAX_CONN_LIFETIME"`
	MaxConnIdleTime   string `envconfig:"DB_POOL_MAX_CONN_IDLE_TIME"`
	HealthCheckPeriod string `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD"`
}

type APIConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Pool      PoolConfig

	// AWS / SQS
	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	SQSQueueURL        string `envconfig:"SQS_QUEUE_URL" required:"true"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
}

type WebhookConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Pool      PoolConfig

	// Webhook signature verification
	TwilioAuthToken string `envconfig:"TWILIO_AUTH_TOKEN" required:"true"`
	// PublicStatusURL / PublicInboundURL must match the EXACT URLs configured
	// in the Twilio console; a trailing-slash or query mismatch rejects
	// legitimate callbacks.
	PublicStatusURL  string `envconfig:"PUBLIC_STATUS_URL" required:"true"`
	PublicInboundURL string `envconfig:"PUBLIC_INBOUND_URL" required:"true"`
}

type WorkerConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Pool      PoolConfig

	// AWS / SQS
	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	SQSQueueURL        string `envconfig:"SQS_QUEUE_URL" required:"true"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
	SQSWaitTime        int32  `envconfig:"SQS_WAIT_TIME" default:"20"`
	SQSMaxMsgs         int32  `envconfig:"SQS_MAX_MSGS" default:"10"`
	SQSVizTimeout      int32  `envconfig:"SQS_VISIBILITY_TIMEOUT" default:"60"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"20"`

	// Twilio
	TwilioAccountSID          string  `envconfig:"TWILIO_ACCOUNT_SID" required:"true"`
	TwilioAuthToken           string  `envconfig:"TWILIO_AUTH_TOKEN" required:"true"`
	TwilioMessagingServiceSID string  `envconfig:"TWILIO_MESSAGING_SERVICE_SID"`
	TwilioFromNumber          string  `envconfig:"TWILIO_FROM_NUMBER"`
	TwilioBaseURL             string  `envconfig:"TWILIO_BASE_URL"`
	TwilioRPSPerPod           float64 `envconfig:"TWILIO_RPS_PER_POD" default:"5"`
	TwilioBurst               int     `envconfig:"TWILIO_BURST" default:"10"`
	StatusCallbackURL         string  `envconfig:"STATUS_CALLBACK_URL"`
}

type SendConfig struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID" required:"true"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN" required:"true"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER" required:"true"`
	TwilioBaseURL    string `envconfig:"TWILIO_BASE_URL"`
}

func LoadAPI() APIConfig {
	var cfg APIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadWebhook() WebhookConfig {
	var cfg WebhookConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadWorker() WorkerConfig {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadSend() SendConfig {
	var cfg SendConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
