package observability

import "testing"

func TestMetrics_ProviderSnapshot(t *testing.T) {
	m := NewMetrics()

	m.IncrRegistration("success")
	m.IncrRegistration("success")
	m.IncrRegistration("duplicate_cnpj")
	m.IncrRegistration("cnpj_not_active")
	m.IncrActivation("success")
	m.IncrActivation("token_expired")
	m.IncrExternalError("registry")
	m.IncrCacheHit("cnpj")
	m.IncrCacheHit("cnpj")
	m.IncrCacheHit("cnpj")
	m.IncrCacheMiss("cnpj")

	snap := m.ProviderSnapshot()
	if snap.Registrations != 2 {
		t.Errorf("expected 2 registrations, got %d", snap.Registrations)
	}
	if snap.RejectedCnpj != 2 {
		t.Errorf("expected 2 rejected CNPJs, got %d", snap.RejectedCnpj)
	}
	if snap.Activations != 1 {
		t.Errorf("expected 1 activation, got %d", snap.Activations)
	}
	if snap.ExpiredTokens != 1 {
		t.Errorf("expected 1 expired token, got %d", snap.ExpiredTokens)
	}
	if snap.RegistryErrors != 1 {
		t.Errorf("expected 1 registry error, got %d", snap.RegistryErrors)
	}
	if snap.ActivationRate != 0.5 {
		t.Errorf("expected activation rate 0.5, got %f", snap.ActivationRate)
	}
	if snap.CacheHitRate != 0.75 {
		t.Errorf("expected cache hit rate 0.75, got %f", snap.CacheHitRate)
	}
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	snap := NewMetrics().ProviderSnapshot()
	if snap.ActivationRate != 0 || snap.CacheHitRate != 0 {
		t.Error("rates over zero samples must be zero, not NaN")
	}
}
