package container

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	QueueKafka = "kafka"
	QueueRedis = "redis"

	CacheRedis    = "redis"
	CacheInMemory = "inmemory"
	CacheNone     = "none"

	defaultTopic = "marathonjobs"
)

type ConfigApp struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ConfigLog struct {
	Level string `yaml:"level"` // debug, info, error
}

// ConfigHTTPServer struct for HTTP ConfigTransport configuration
type ConfigHTTPServer struct {
	Port int `yaml:"port"`
}

// ConfigTransport is a configuration for API transport, only HTTP for now.
type ConfigTransport struct {
	HTTP ConfigHTTPServer `yaml:"http"`
}

type ConfigGoSqlDb struct {
	Debug        bool   `yaml:"debug"`
	DSN          string `yaml:"dsn"` // Data Source Name
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type ConfigDatabaseResource struct {
	Disable bool   `yaml:"disable"`
	Driver  string `yaml:"driver"`

	Postgres ConfigGoSqlDb `yaml:"postgres"`
}

// ConfigDatabaseResources is db label => connection info
type ConfigDatabaseResources map[string]ConfigDatabaseResource

type ConfigRedisResource struct {
	Mode       string   `yaml:"mode"` // single, sentinel or cluster
	Address    []string `yaml:"address"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	MasterName string   `yaml:"masterName"`
}

// ConfigRedisResources is redis label => connection info
type ConfigRedisResources map[string]ConfigRedisResource

type ConfigKafka struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"clientId"`
	Topic    string   `yaml:"topic"`
	GroupID  string   `yaml:"groupId"`
}

type ConfigQueue struct {
	Type       string `yaml:"type"`
	RedisLabel string `yaml:"redisLabel"`
}

type ConfigServiceRepo struct {
	DBLabel string `yaml:"dbLabel"`
}

type ConfigServiceCache struct {
	Type       string        `yaml:"type"`
	RedisLabel string        `yaml:"redisLabel"`
	Expiry     time.Duration `yaml:"expiry"`
}

type ConfigServices struct {
	App      ConfigServiceRepo  `yaml:"app"`
	Template ConfigServiceRepo  `yaml:"template"`
	Job      ConfigServiceRepo  `yaml:"job"`
	Cache    ConfigServiceCache `yaml:"cache"`
}

type ConfigWorker struct {
	LoopTimeout time.Duration `yaml:"loopTimeout"`
	PollTimeout time.Duration `yaml:"pollTimeout"`

	// MetricsPort serves /metrics of the worker process.
	MetricsPort int `yaml:"metricsPort"`
}

// ConfigMail is smtp server used to notify job creator, disabled unless enable is true.
type ConfigMail struct {
	Enable   bool   `yaml:"enable"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Sender   string `yaml:"sender"`
}

type ConfigLock struct {
	RedisLabel string        `yaml:"redisLabel"`
	TTL        time.Duration `yaml:"ttl"`
}

type ConfigTracer struct {
	JaegerEndpoint string `yaml:"jaegerEndpoint"`
}

// Config contains application config
type Config struct {
	App               ConfigApp               `yaml:"app"`
	Log               ConfigLog               `yaml:"log"`
	Transport         ConfigTransport         `yaml:"transport"`
	DatabaseResources ConfigDatabaseResources `yaml:"databaseResources"`
	Redis             ConfigRedisResources    `yaml:"redis"`
	Kafka             ConfigKafka             `yaml:"kafka"`
	Queue             ConfigQueue             `yaml:"queue"`
	Services          ConfigServices          `yaml:"services"`
	Worker            ConfigWorker            `yaml:"worker"`
	Mail              ConfigMail              `yaml:"mail"`
	Lock              ConfigLock              `yaml:"lock"`
	Tracer            ConfigTracer            `yaml:"tracer"`
}

// LoadConfig read YAML file content into Config, unknown fields are ignored.
// Missing values are filled with defaults.
func LoadConfig(fileName string) (cfg Config, err error) {
	fileContent, err := os.ReadFile(fileName)
	if err != nil {
		err = fmt.Errorf("error read file config %s: %w", fileName, err)
		return
	}

	dec := yaml.NewDecoder(bytes.NewReader(fileContent))
	dec.KnownFields(false)
	err = dec.Decode(&cfg)
	if err != nil {
		err = fmt.Errorf("error decode config %s: %w", fileName, err)
		return
	}

	cfg.setDefault()
	return
}

func (c *Config) setDefault() {
	if c.App.Name == "" {
		c.App.Name = "marathon"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Transport.HTTP.Port <= 0 {
		c.Transport.HTTP.Port = 3000
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = defaultTopic
	}

	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = c.App.Name
	}

	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = c.App.Name + "-worker"
	}

	if c.Queue.Type == "" {
		c.Queue.Type = QueueKafka
	}

	if c.Services.Cache.Type == "" {
		c.Services.Cache.Type = CacheNone
	}

	if c.Services.Cache.Expiry <= 0 {
		c.Services.Cache.Expiry = time.Minute
	}

	if c.Worker.LoopTimeout <= 0 {
		c.Worker.LoopTimeout = 500 * time.Millisecond
	}

	if c.Worker.PollTimeout <= 0 {
		c.Worker.PollTimeout = 5 * time.Second
	}

	if c.Worker.MetricsPort <= 0 {
		c.Worker.MetricsPort = 9100
	}

	if c.Mail.Port <= 0 {
		c.Mail.Port = 587
	}

	if c.Lock.TTL <= 0 {
		c.Lock.TTL = time.Minute
	}
}
