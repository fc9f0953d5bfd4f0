package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DocumentConfig carries the seller details printed on every rendered invoice.
type DocumentConfig struct {
	StoreName    string
	StoreAddress string
	StoreEmail   string
	Footer       string
	DateLayout   string
}

func DefaultDocumentConfig() DocumentConfig {
	return DocumentConfig{
		StoreName:  "Test store",
		DateLayout: "2006-01-02",
	}
}

type DocumentConfigHolder struct {
	current atomic.Value // holds DocumentConfig
}

// NewDocumentConfigHolder reads invoice.yml from the configured directory and keeps
// watching it. Env vars prefixed INVOICER_ override individual keys.
func NewDocumentConfigHolder(cfg Config) (*DocumentConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoice")
	v.SetConfigType("yml")
	if dir := strings.TrimSpace(cfg.Invoice.DocumentConfigDir); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDocumentConfig()
	v.SetDefault("document.storeName", defaults.StoreName)
	v.SetDefault("document.storeAddress", defaults.StoreAddress)
	v.SetDefault("document.storeEmail", defaults.StoreEmail)
	v.SetDefault("document.footer", defaults.Footer)
	v.SetDefault("document.dateLayout", defaults.DateLayout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	doc := readDocumentConfig(v)
	if err := validateDocumentConfig(doc); err != nil {
		return nil, err
	}

	holder := &DocumentConfigHolder{}
	holder.current.Store(doc)

	if v.ConfigFileUsed() == "" {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readDocumentConfig(v)
		if err := validateDocumentConfig(updated); err != nil {
			zap.L().Warn("invalid document config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("document config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// StaticDocumentConfig returns a holder pinned to cfg.
func StaticDocumentConfig(cfg DocumentConfig) *DocumentConfigHolder {
	holder := &DocumentConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DocumentConfigHolder) Get() DocumentConfig {
	if h == nil {
		return DefaultDocumentConfig()
	}
	return h.current.Load().(DocumentConfig)
}

// readDocumentConfig reads leaf keys one by one so defaults and env overrides
// apply even when the file only sets some of them.
func readDocumentConfig(v *viper.Viper) DocumentConfig {
	return DocumentConfig{
		StoreName:    strings.TrimSpace(v.GetString("document.storeName")),
		StoreAddress: strings.TrimSpace(v.GetString("document.storeAddress")),
		StoreEmail:   strings.TrimSpace(v.GetString("document.storeEmail")),
		Footer:       strings.TrimSpace(v.GetString("document.footer")),
		DateLayout:   strings.TrimSpace(v.GetString("document.dateLayout")),
	}
}

func validateDocumentConfig(cfg DocumentConfig) error {
	if strings.TrimSpace(cfg.StoreName) == "" {
		return errors.New("document.storeName cannot be empty")
	}
	if strings.TrimSpace(cfg.DateLayout) == "" {
		return errors.New("document.dateLayout cannot be empty")
	}
	return nil
}
