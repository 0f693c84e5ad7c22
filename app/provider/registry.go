package provider

import (
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrProviderNotSupported = errors.New("provider is not supported")

const hostProviderPrefix = "pp_"

// Registry maps provider identifiers to providers. It is built once at
// startup and never modified afterwards.
type Registry struct {
	providers map[string]*Provider
	configID  string
}

func NewRegistry(options Options, gateway Gateway, logger logrus.FieldLogger) (*Registry, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	items := make(map[string]*Provider, len(Descriptors))
	for _, d := range Descriptors {
		items[d.Identifier] = NewProvider(d, options, gateway, logger)
	}
	return &Registry{providers: items, configID: options.configID()}, nil
}

func (r *Registry) Get(identifier string) (*Provider, error) {
	provider, ok := r.providers[identifier]
	if !ok {
		return nil, ErrProviderNotSupported
	}
	return provider, nil
}

// Lookup resolves a host provider id such as "pp_pay-ideal_pay" or a webhook
// path parameter such as "pay-ideal_pay".
func (r *Registry) Lookup(providerID string) (*Provider, error) {
	return r.Get(r.identifier(providerID))
}

func (r *Registry) identifier(providerID string) string {
	id := strings.TrimPrefix(providerID, hostProviderPrefix)
	return strings.TrimSuffix(id, "_"+r.configID)
}

// IsPayProvider reports whether a webhook path parameter belongs to one of
// the registered providers: the identifier alone or followed by "_<config id>".
func (r *Registry) IsPayProvider(providerID string) bool {
	id := strings.TrimPrefix(providerID, hostProviderPrefix)
	for identifier := range r.providers {
		if id == identifier || strings.HasPrefix(id, identifier+"_") {
			return true
		}
	}
	return false
}

func (r *Registry) Identifiers() []string {
	out := make([]string, 0, len(r.providers))
	for identifier := range r.providers {
		out = append(out, identifier)
	}
	sort.Strings(out)
	return out
}
