package config

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type Config struct {
	MinIOBucket string        `yaml:"minio_bucket"`
	App         App           `yaml:"app"`
	DB          *sql.DB       `yaml:"db"`
	Queue       *RabbitMQ     `yaml:"rabbitmq"`
	Storage     *minio.Client `yaml:"storage"`
	Server      Server        `yaml:"server"`
	Video       Video         `yaml:"video"`
	Push        Push          `yaml:"push"`
	Email       Email         `yaml:"email"`
	LLM         LLM           `yaml:"llm"`
	Schedules   Schedules     `yaml:"schedules"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
}

type Video struct {
	BaseUrl string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
}

type Push struct {
	BaseUrl string `yaml:"base_url"`
	AppId   string `yaml:"app_id"`
	ApiKey  string `yaml:"api_key"`
}

type Email struct {
	SendGridKey string `yaml:"sendgrid_key"`
	FromName    string `yaml:"from_name"`
	FromAddress string `yaml:"from_address"`
}

type LLM struct {
	BaseUrl string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Schedules holds cron expressions for the periodic jobs.
type Schedules struct {
	ReminderScan  string `yaml:"reminder_scan"`
	RecordingSync string `yaml:"recording_sync"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host: viper.GetString("rabbitmq_host"),
		Port: viper.GetInt("rabbitmq_port"),
		User: viper.GetString("rabbitmq_user"),
		Pass: viper.GetString("rabbitmq_pass"),
		Kind: viper.GetString("rabbitmq_kind"),
	}

	minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	viper.SetDefault("schedules.reminder_scan", "*/2 * * * *")
	viper.SetDefault("schedules.recording_sync", "*/10 * * * *")

	return &Config{
		MinIOBucket: viper.GetString("minio.bucket"),
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
			Protocol:    viper.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		Video: Video{
			BaseUrl: viper.GetString("video.base_url"),
			ApiKey:  viper.GetString("video.api_key"),
		},
		Push: Push{
			BaseUrl: viper.GetString("push.base_url"),
			AppId:   viper.GetString("push.app_id"),
			ApiKey:  viper.GetString("push.api_key"),
		},
		Email: Email{
			SendGridKey: viper.GetString("email.sendgrid_key"),
			FromName:    viper.GetString("email.from_name"),
			FromAddress: viper.GetString("email.from_address"),
		},
		LLM: LLM{
			BaseUrl: viper.GetString("llm.base_url"),
			ApiKey:  viper.GetString("llm.api_key"),
			Model:   viper.GetString("llm.model"),
		},
		Schedules: Schedules{
			ReminderScan:  viper.GetString("schedules.reminder_scan"),
			RecordingSync: viper.GetString("schedules.recording_sync"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
	}, nil
}
