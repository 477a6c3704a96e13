package dimension

import (
	"fmt"
	"sync"

	"github.com/hashicorp/consul/api"
)

// Factory builds a Provider from a configuration section. Factories are
// registered by name so providers can be declared in YAML next to the
// rest of the reporter configuration.
type Factory interface {
	// Name returns the factory name used in configuration ("static",
	// "ec2", "consul").
	Name() string

	// New builds a provider from its configuration section.
	New(cfg map[string]any) (Provider, error)
}

var (
	_factoryMu sync.RWMutex
	_factories = make(map[string]Factory)
)

// RegisterFactory registers a provider factory. Call from init.
func RegisterFactory(f Factory) {
	_factoryMu.Lock()
	defer _factoryMu.Unlock()
	_factories[f.Name()] = f
}

// NewProvider builds a provider through the named factory.
func NewProvider(name string, cfg map[string]any) (Provider, error) {
	_factoryMu.RLock()
	f, ok := _factories[name]
	_factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dimension provider factory %q not registered, available: %v", name, listFactories())
	}
	return f.New(cfg)
}

func listFactories() []string {
	var names []string
	for name := range _factories {
		names = append(names, name)
	}
	return names
}

func init() {
	RegisterFactory(staticFactory{})
	RegisterFactory(ec2Factory{})
	RegisterFactory(consulFactory{})
}

type staticFactory struct{}

func (staticFactory) Name() string { return "static" }

func (staticFactory) New(cfg map[string]any) (Provider, error) {
	dims := make(map[string]string)
	for key, val := range cfg {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("static dimension %q: value must be a string, got %T", key, val)
		}
		dims[key] = s
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("static dimension provider needs at least one dimension")
	}
	return NewStaticMap(dims, nil), nil
}

type ec2Factory struct{}

func (ec2Factory) Name() string { return "ec2" }

func (ec2Factory) New(cfg map[string]any) (Provider, error) {
	if id, ok := cfg["instanceId"].(string); ok && id != "" {
		return NewFixedInstanceID(id, nil), nil
	}
	return NewInstanceID(nil), nil
}

type consulFactory struct{}

func (consulFactory) Name() string { return "consul" }

func (consulFactory) New(cfg map[string]any) (Provider, error) {
	conf := api.DefaultConfig()
	if addr, ok := cfg["address"].(string); ok && addr != "" {
		conf.Address = addr
	}
	client, err := api.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	return NewConsulNode(client, nil)
}
