package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/chaos-io/prettify/logging"
	"github.com/chaos-io/prettify/studio"
)

const envPrefix = "PRETTIFY"

type Config struct {
	Log       logging.Config `mapstructure:"log" yaml:"log"`
	Studio    studio.Params  `mapstructure:"studio" yaml:"studio"`
	Segmenter Segmenter      `mapstructure:"segmenter" yaml:"segmenter"`
	Worker    Worker         `mapstructure:"worker" yaml:"worker"`
	// MaxInputEdge 分割前限制原图最长边，0 不限制
	MaxInputEdge int `mapstructure:"max_input_edge" yaml:"max_input_edge" default:"4096" validate:"gte=0"`
}

// Segmenter 选择抠图实现
//
//	http  远程抠图服务
//	onnx  本地 RMBG-1.4 模型
//	alpha 输入已经是抠图
type Segmenter struct {
	Kind          string        `mapstructure:"kind" yaml:"kind" default:"http" validate:"oneof=http onnx alpha"`
	URL           string        `mapstructure:"url" yaml:"url" validate:"required_if=Kind http,omitempty,url"`
	ModelPath     string        `mapstructure:"model_path" yaml:"model_path" validate:"required_if=Kind onnx"`
	SharedLibPath string        `mapstructure:"shared_lib_path" yaml:"shared_lib_path"`
	Threads       int           `mapstructure:"threads" yaml:"threads" validate:"gte=0"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" default:"60s" validate:"gte=0"`
}

type Worker struct {
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency" default:"4" validate:"gte=1"`
	Inbox       string `mapstructure:"inbox" yaml:"inbox" default:"inbox"`
	Outbox      string `mapstructure:"outbox" yaml:"outbox" default:"outbox"`
	Schedule    string `mapstructure:"schedule" yaml:"schedule" default:"@every 30s"`
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" default:"90" validate:"gte=1,lte=100"`
}

// envKeys 可以用 PRETTIFY_* 环境变量覆盖的配置项，. 替换为 _
var envKeys = []string{
	"log.level", "log.format", "log.file",
	"studio.blur_radius", "studio.shadow_opacity", "studio.vignette_exponent",
	"studio.vignette_scale", "studio.padding_ratio", "studio.target_aspect",
	"segmenter.kind", "segmenter.url", "segmenter.model_path", "segmenter.shared_lib_path",
	"segmenter.threads", "segmenter.timeout",
	"worker.concurrency", "worker.inbox", "worker.outbox", "worker.schedule", "worker.jpeg_quality",
	"max_input_edge",
}

var validate = validator.New()

// Load 依次读取 .env、配置文件（path 为空时跳过）和环境变量，最后校验
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	cfg.Studio = studio.DefaultParams()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults after unmarshal: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
