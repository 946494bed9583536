package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/leeforge/squash/logging"
)

// AppConfig is the full configuration of the squash command.
type AppConfig struct {
	Compress CompressConfig `mapstructure:"compress" json:"compress"`
	Logging  logging.Config `mapstructure:"logging" json:"logging"`
	Storage  StorageConfig  `mapstructure:"storage" json:"storage"`
}

// CompressConfig holds the default options for each compression invocation.
type CompressConfig struct {
	MaxAssetSize        string `mapstructure:"max-asset-size" json:"maxAssetSize" default:"1920x1080" validate:"oneof=1920x1080 1280x720"`
	OutputExtension     string `mapstructure:"output-extension" json:"outputExtension" default:"webp" validate:"oneof=webp jpeg"`
	GenerateExtraSizes  bool   `mapstructure:"generate-extra-sizes" json:"generateExtraSizes"`
	Filter              string `mapstructure:"filter" json:"filter" default:"approx-bilinear" validate:"oneof=approx-bilinear nearest bilinear catmull-rom lanczos3 mitchell bicubic"`
	MaxSurfaceDimension int    `mapstructure:"max-surface-dimension" json:"maxSurfaceDimension" default:"32767" validate:"gt=0"`
	MaxSurfaceArea      int    `mapstructure:"max-surface-area" json:"maxSurfaceArea" default:"268435456" validate:"gt=0"`
}

// StorageConfig selects where exported renditions are written.
type StorageConfig struct {
	Type  string             `mapstructure:"type" json:"type" default:"local" validate:"oneof=local oss"`
	Local LocalStorageConfig `mapstructure:"local" json:"local"`
	OSS   OSSStorageConfig   `mapstructure:"oss" json:"oss"`
}

type LocalStorageConfig struct {
	BasePath string `mapstructure:"base-path" json:"basePath" default:"out"`
	BaseURL  string `mapstructure:"base-url" json:"baseUrl"`
}

type OSSStorageConfig struct {
	Endpoint        string `mapstructure:"endpoint" json:"endpoint"`
	AccessKeyID     string `mapstructure:"access-key-id" json:"-"`
	AccessKeySecret string `mapstructure:"access-key-secret" json:"-"`
	Bucket          string `mapstructure:"bucket" json:"bucket"`
	Domain          string `mapstructure:"domain" json:"domain"`
	Folder          string `mapstructure:"folder" json:"folder"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enumerations and the storage backend requirements.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Storage.Type == "oss" {
		o := c.Storage.OSS
		if o.Endpoint == "" || o.Bucket == "" || o.AccessKeyID == "" || o.AccessKeySecret == "" {
			return fmt.Errorf("config validation failed: storage.oss requires endpoint, bucket, access-key-id and access-key-secret")
		}
	}
	return nil
}

// Load reads the layered configuration described by opts into an AppConfig,
// applying struct defaults and SQUASH_* environment overrides.
func Load(opts ConfigOptions) (*AppConfig, *Config, error) {
	if len(opts.Keys) == 0 {
		opts.Keys = Keys(AppConfig{})
	}

	c, err := NewConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	var app AppConfig
	if err := c.BindWithDefaults(&app); err != nil {
		return nil, nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, nil, err
	}
	return &app, c, nil
}

// Keys lists the dotted mapstructure keys of every leaf field of v.
func Keys(v any) []string {
	return collectKeys(reflect.TypeOf(v), "")
}

func collectKeys(t reflect.Type, prefix string) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, collectKeys(field.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
