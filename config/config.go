// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Generation GenerationConfig `mapstructure:"generation"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
}

type ServerConfig struct {
	AppVersion   string        `mapstructure:"app_version"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Idle_timeout time.Duration `mapstructure:"idle_timeout"`
	Env          string        `mapstructure:"environment"`
	Mode         string        `mapstructure:"mode"`
}

type GenerationConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// forward the caption to the model in addition to compositing it locally
	ModelCaption bool `mapstructure:"model_caption"`
}

type WorkflowConfig struct {
	DefaultCaption   string        `mapstructure:"default_caption"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	ProgressMessages []string      `mapstructure:"progress_messages"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	MaxUploadBytes   int64         `mapstructure:"max_upload_bytes"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

const DefaultCaption = "Formatura EJA 2025 - EMEB MARIA ADELAIDE ROSSI"

var DefaultProgressMessages = []string{
	"Analisando a pose e iluminação da foto...",
	"Desenhando a beca com tecido virtual...",
	"Criando um fundo sofisticado de formatura...",
	"Ajustando a faixa azul para um caimento perfeito...",
	"Quase pronto! Dando os toques finais...",
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath(GetEnv("CONFIG_PATH", "./config"))
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()
	_ = viperInstance.BindEnv("generation.api_key", "GEMINI_API_KEY", "GENERATION_API_KEY")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("generation.model", "gemini-2.5-flash-image")
	v.SetDefault("generation.timeout", 2*time.Minute)
	v.SetDefault("generation.model_caption", false)

	v.SetDefault("workflow.default_caption", DefaultCaption)
	v.SetDefault("workflow.progress_interval", 3*time.Second)
	v.SetDefault("workflow.progress_messages", DefaultProgressMessages)
	v.SetDefault("workflow.session_ttl", 30*time.Minute)
	v.SetDefault("workflow.cleanup_interval", time.Minute)
	v.SetDefault("workflow.max_upload_bytes", 20<<20)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "graduation-photos")
	v.SetDefault("kafka.group_id", "graduation-photo-processor")
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Printf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
