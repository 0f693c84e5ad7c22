package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-paynl/app/cache"
	"github.com/vibast-solutions/ms-go-paynl/app/metrics"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

const (
	configCacheKeyPrefix  = "pay_config"
	defaultConfigCacheTTL = 24 * time.Hour
	defaultSequence       = "default"
)

type configGateway interface {
	GetConfig(ctx context.Context) (*paynl.ServiceConfig, error)
}

// CheckoutOptions is the cached subset of the sales location configuration.
type CheckoutOptions struct {
	CheckoutOptions  []paynl.CheckoutOption            `json:"checkoutOptions"`
	CheckoutSequence map[string]paynl.CheckoutSequence `json:"checkoutSequence"`
	CheckoutTexts    json.RawMessage                   `json:"checkoutTexts,omitempty"`
}

// SortedPaymentMethods flattens the payment methods of the checkout options
// in the order of the default primary sequence.
func (o CheckoutOptions) SortedPaymentMethods() []paynl.CheckoutPaymentMethod {
	sequence, ok := o.CheckoutSequence[defaultSequence]
	if !ok {
		return []paynl.CheckoutPaymentMethod{}
	}

	byTag := make(map[string]paynl.CheckoutOption, len(o.CheckoutOptions))
	for _, option := range o.CheckoutOptions {
		byTag[option.Tag] = option
	}

	methods := make([]paynl.CheckoutPaymentMethod, 0)
	for _, tag := range sequence.Primary {
		if option, ok := byTag[tag]; ok {
			methods = append(methods, option.PaymentMethods...)
		}
	}
	return methods
}

type CheckoutService struct {
	gateway   configGateway
	cache     cache.Cache
	serviceID string
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

func NewCheckoutService(
	gateway configGateway,
	c cache.Cache,
	serviceID string,
	ttl time.Duration,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) *CheckoutService {
	if ttl <= 0 {
		ttl = defaultConfigCacheTTL
	}
	return &CheckoutService{
		gateway:   gateway,
		cache:     c,
		serviceID: serviceID,
		ttl:       ttl,
		metrics:   m,
		logger:    logger,
	}
}

func (s *CheckoutService) CacheKey() string {
	return configCacheKeyPrefix + ":" + s.serviceID
}

// GetCheckoutOptions serves the checkout options from the cache, loading
// them from the gateway on a miss. Cache failures degrade to a gateway call.
func (s *CheckoutService) GetCheckoutOptions(ctx context.Context) (*CheckoutOptions, error) {
	key := s.CacheKey()

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Checkout options cache read failed")
	}
	if found {
		var cached CheckoutOptions
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.metrics.ConfigCacheLookup(true)
			return &cached, nil
		}
		s.logger.Warn("Discarding unreadable checkout options cache entry")
	}
	s.metrics.ConfigCacheLookup(false)

	cfg, err := s.gateway.GetConfig(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error retrieving Pay. checkout options")
		return nil, err
	}

	options := &CheckoutOptions{
		CheckoutOptions:  cfg.CheckoutOptions,
		CheckoutSequence: cfg.CheckoutSequence,
		CheckoutTexts:    cfg.CheckoutTexts,
	}

	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Checkout options cache write failed")
	}

	return options, nil
}

func (s *CheckoutService) ClearCache(ctx context.Context) error {
	return s.cache.Delete(ctx, s.CacheKey())
}
