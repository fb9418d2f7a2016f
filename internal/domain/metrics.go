package domain

// ProviderMetrics is the operational snapshot for GET /v1/metrics/providers.
type ProviderMetrics struct {
	Registrations  int64   `json:"registrations"`
	RejectedCnpj   int64   `json:"rejectedCnpj"`
	Activations    int64   `json:"activations"`
	ExpiredTokens  int64   `json:"expiredTokens"`
	RegistryErrors int64   `json:"registryErrors"`
	ActivationRate float64 `json:"activationRate"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	Period         string  `json:"period"`
}
