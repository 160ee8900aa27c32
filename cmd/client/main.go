package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuneroom/client/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	userId = configVar[string]{
		envKey:       "TUNEROOM_USER_ID",
		flagKey:      "user-id",
		defaultValue: "",
	}
	email = configVar[string]{
		envKey:       "TUNEROOM_EMAIL",
		flagKey:      "email",
		defaultValue: "",
	}
	port = configVar[int]{
		envKey:       "TUNEROOM_PORT",
		flagKey:      "port",
		defaultValue: 8370,
	}
	host = configVar[string]{
		envKey:       "TUNEROOM_HOST",
		flagKey:      "host",
		defaultValue: "127.0.0.1",
	}
	logLevel = configVar[string]{
		envKey:       "TUNEROOM_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	seekDebounceMs = configVar[int]{
		envKey:       "TUNEROOM_SEEK_DEBOUNCE_MS",
		flagKey:      "seek-debounce-ms",
		defaultValue: 500,
	}
	pollIntervalMs = configVar[int]{
		envKey:       "TUNEROOM_POLL_INTERVAL_MS",
		flagKey:      "poll-interval-ms",
		defaultValue: 1000,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(userId.flagKey, userId.defaultValue, "Participant id, generated when empty")
	pflag.String(email.flagKey, email.defaultValue, "Participant email shown in the roster")
	pflag.Int(port.flagKey, port.defaultValue, "Control api port")
	pflag.String(host.flagKey, host.defaultValue, "Control api host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(seekDebounceMs.flagKey, seekDebounceMs.defaultValue, "Seek publish debounce window in milliseconds")
	pflag.Int(pollIntervalMs.flagKey, pollIntervalMs.defaultValue, "Position poll interval in milliseconds")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(userId.flagKey, userId.envKey)
	viper.BindEnv(email.flagKey, email.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(seekDebounceMs.flagKey, seekDebounceMs.envKey)
	viper.BindEnv(pollIntervalMs.flagKey, pollIntervalMs.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(userId.flagKey, userId.defaultValue)
	viper.SetDefault(email.flagKey, email.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(seekDebounceMs.flagKey, seekDebounceMs.defaultValue)
	viper.SetDefault(pollIntervalMs.flagKey, pollIntervalMs.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		UserId:         viper.GetString(userId.flagKey),
		Email:          viper.GetString(email.flagKey),
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		SeekDebounceMs: viper.GetInt(seekDebounceMs.flagKey),
		PollIntervalMs: viper.GetInt(pollIntervalMs.flagKey),
		RedisPort:      viper.GetInt(redisPort.flagKey),
		RedisHost:      viper.GetString(redisHost.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
	}

	if config.UserId == "" {
		config.UserId = uuid.NewString()
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting client with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
