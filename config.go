package main

import (
	"fmt"
	"os"
	"strings"

	"order-service/services"
)

type Config struct {
	Port        string
	Environment string

	KafkaBrokers []string
	KafkaTopic   string

	SNSTopicArn string

	Gateway services.GatewayConfig
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8083"),
		Environment: getEnv("APP_ENV", "development"),
		KafkaTopic:  getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		SNSTopicArn: os.Getenv("ORDER_EVENTS_SNS_ARN"),
		Gateway: services.GatewayConfig{
			Key:         os.Getenv("EASEBUZZ_KEY"),
			Salt:        os.Getenv("EASEBUZZ_SALT"),
			BaseURL:     getEnv("EASEBUZZ_BASE_URL", "https://pay.easebuzz.in"),
			CallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.Gateway.Key == "" || cfg.Gateway.Salt == "" {
		return nil, fmt.Errorf("EASEBUZZ_KEY and EASEBUZZ_SALT are required")
	}
	if cfg.Gateway.CallbackURL == "" {
		return nil, fmt.Errorf("PAYMENT_CALLBACK_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
