package cache_test

import (
	"testing"
	"time"

	"github.com/servicofacil/prestador-api/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("12345678000190", "ATIVA")
	val, ok := c.Get("12345678000190")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "ATIVA" {
		t.Errorf("expected 'ATIVA', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "first")
	c.Set("key1", "second")

	val, _ := c.Get("key1")
	if val != "second" {
		t.Errorf("expected 'second', got '%s'", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
