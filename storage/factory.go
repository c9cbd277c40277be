package storage

import (
	"fmt"
	"log"

	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/storage/local"
	"github.com/picstash/picstash/storage/minio"
)

// Factory creates and holds the configured storage providers.
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewFactory initializes providers from configuration. The local provider is
// always available; MinIO is added when an endpoint is configured.
func NewFactory(cfg *config.Config) (*Factory, error) {
	factory := &Factory{providers: make(map[string]Provider)}

	log.Println("Initializing storage providers...")

	localProvider, err := local.NewStorage(cfg.StorageLocalPath)
	if err != nil {
		log.Printf("Failed to initialize local storage: %v", err)
	} else {
		factory.providers["local"] = localProvider
		log.Println("Successfully initialized 'local' storage provider")
	}

	if cfg.MinioEndpoint != "" {
		minioProvider, err := minio.NewStorage(minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Printf("Failed to initialize minio storage: %v", err)
		} else {
			factory.providers["minio"] = minioProvider
			log.Println("Successfully initialized 'minio' storage provider")
		}
	}

	if len(factory.providers) == 0 {
		return nil, fmt.Errorf("no storage providers were successfully initialized")
	}

	factory.defaultProvider = cfg.StorageType
	if factory.defaultProvider == "" {
		factory.defaultProvider = "local"
	}
	if _, ok := factory.providers[factory.defaultProvider]; !ok {
		return nil, fmt.Errorf("default storage type '%s' is not available", factory.defaultProvider)
	}
	log.Printf("Default storage provider set to: '%s'", factory.defaultProvider)

	return factory, nil
}

// Get returns the provider with the given name, or the default for "".
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}
	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault returns the default provider.
func (f *Factory) GetDefault() Provider {
	provider, _ := f.Get(f.defaultProvider)
	return provider
}

// LocalBasePath returns the local provider's base directory when the default
// provider is disk-backed, for static file serving. Empty otherwise.
func (f *Factory) LocalBasePath() string {
	if s, ok := f.providers[f.defaultProvider].(*local.Storage); ok {
		return s.BasePath()
	}
	return ""
}
