package config

import "time"

// JobxConfig configures the background job queue.
type JobxConfig struct {
	// Backend is "redis" or "memory".
	Backend           string
	Prefix            string
	Concurrency       int
	Queues            []string
	PollInterval      time.Duration
	ShutdownTimeout   time.Duration
	DequeueTimeout    time.Duration
	DefaultRetryDelay time.Duration
	ResultTTL         time.Duration
}

func loadJobxConfig() JobxConfig {
	return JobxConfig{
		Backend:           getEnv("JOBX_BACKEND", "redis"),
		Prefix:            getEnv("JOBX_PREFIX", "saenggibu:jobs"),
		Concurrency:       getEnvInt("JOBX_CONCURRENCY", 2),
		Queues:            getEnvStringSlice("JOBX_QUEUES", []string{"default"}),
		PollInterval:      getEnvDuration("JOBX_POLL_INTERVAL", time.Second),
		ShutdownTimeout:   getEnvDuration("JOBX_SHUTDOWN_TIMEOUT", 2*time.Minute),
		DequeueTimeout:    getEnvDuration("JOBX_DEQUEUE_TIMEOUT", 5*time.Second),
		DefaultRetryDelay: getEnvDuration("JOBX_DEFAULT_RETRY_DELAY", 30*time.Second),
		ResultTTL:         getEnvDuration("JOBX_RESULT_TTL", 7*24*time.Hour),
	}
}
