package global

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ClientOrigin string `mapstructure:"client_origin"` // browser origin allowed to send the session cookie
	LogLevel     string `mapstructure:"log_level"`
	NodeID       int64  `mapstructure:"node_id"` // snowflake node, 0~1023
}

type MongoConfig struct {
	Uri         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	AuthSource  string `mapstructure:"auth_source"`
	MaxPoolSize int    `mapstructure:"max_pool_size"`
	MaxRetry    int    `mapstructure:"max_retry"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // empty disables redis-backed features
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type NatsConfig struct {
	Servers []string `mapstructure:"servers"` // empty disables event publishing
	Name    string   `mapstructure:"name"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type GatewayConfig struct {
	SendQueueSize  int           `mapstructure:"send_queue_size"`
	AuthTimeout    time.Duration `mapstructure:"auth_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongTimeout    time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type CloudinaryConfig struct {
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
	Folder       string `mapstructure:"folder"`
}

type HuggingFaceConfig struct {
	Token          string        `mapstructure:"token"` // empty means mock fallback only
	SummaryModel   string        `mapstructure:"summary_model"`
	SentimentModel string        `mapstructure:"sentiment_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type AppConfig struct {
	Server      ServerConfig      `mapstructure:"server"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Nats        NatsConfig        `mapstructure:"nats"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Cloudinary  CloudinaryConfig  `mapstructure:"cloudinary"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
}

func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         3001,
			ClientOrigin: "http://localhost:3000",
			LogLevel:     "debug",
			NodeID:       1,
		},
		Mongo: MongoConfig{
			Uri:         "mongodb://localhost:27017",
			Database:    "vconnct",
			MaxPoolSize: 20,
			MaxRetry:    3,
		},
		Nats: NatsConfig{Name: "vconnct-api"},
		JWT:  JWTConfig{TTL: 7 * 24 * time.Hour},
		Gateway: GatewayConfig{
			SendQueueSize:  256,
			AuthTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			PingInterval:   25 * time.Second,
			PongTimeout:    75 * time.Second,
			MaxMessageSize: 4096,
		},
		Cloudinary: CloudinaryConfig{Folder: "vconnct_messages"},
		HuggingFace: HuggingFaceConfig{
			SummaryModel:   "facebook/bart-large-cnn",
			SentimentModel: "distilbert-base-uncased-finetuned-sst-2-english",
			Timeout:        20 * time.Second,
		},
	}
}

// Load builds the config from defaults, an optional YAML file, then env
// overrides. Env wins so deployments can keep secrets out of the file.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		} else {
			var tree map[string]any
			if err := yaml.Unmarshal(raw, &tree); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				Result:           cfg,
				WeaklyTypedInput: true,
				DecodeHook: mapstructure.ComposeDecodeHookFunc(
					mapstructure.StringToTimeDurationHookFunc(),
					mapstructure.StringToSliceHookFunc(","),
				),
			})
			if err != nil {
				return nil, errors.Wrap(err, "build config decoder")
			}
			if err := dec.Decode(tree); err != nil {
				return nil, errors.Wrapf(err, "decode config %s", path)
			}
		}
	}

	applyEnv(cfg)

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret is required (jwt.secret or JWT_SECRET)")
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("CLIENT_URL"); v != "" {
		cfg.Server.ClientOrigin = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.Uri = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NATS_SERVERS"); v != "" {
		cfg.Nats.Servers = strings.Split(v, ",")
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("CLOUDINARY_CLOUD_NAME"); v != "" {
		cfg.Cloudinary.CloudName = v
	}
	if v := os.Getenv("CLOUDINARY_UPLOAD_PRESET"); v != "" {
		cfg.Cloudinary.UploadPreset = v
	}
	if v := os.Getenv("HUGGINGFACE_TOKEN"); v != "" {
		cfg.HuggingFace.Token = v
	}
}

func (c *AppConfig) JWTSecret() []byte {
	return []byte(c.JWT.Secret)
}
