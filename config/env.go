// Package config loads application settings from config/app.json and .env,
// layered over built-in defaults. Values are read once and cached.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	defaultMongoURI    = "mongodb://localhost:27017"
	defaultMongoDB     = "vanijya"
	defaultRedisAddr   = "localhost:6379"
	defaultAppPort     = "8080"
	defaultAppEnv      = "local"
	defaultCurrency    = "INR"
	defaultNotifyInbox = "hello@vanijya.app"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":           defaultMongoURI,
		"MONGO_DB":            defaultMongoDB,
		"REDIS_ADDR":          defaultRedisAddr,
		"REDIS_PASSWORD":      "",
		"APP_PORT":            defaultAppPort,
		"APP_ENV":             defaultAppEnv,
		"DEFAULT_CURRENCY":    defaultCurrency,
		"NOTIFY_INBOX":        defaultNotifyInbox,
		"JWT_SECRET":          "", // no fallback: a guessable signing secret is worse than not starting
		"RAZORPAY_KEY_ID":     "",
		"RAZORPAY_KEY_SECRET": "",
		"LOG_MONGO_URI":       "",
	}
}

// required lists the keys the server refuses to start without.
var required = []string{
	"MONGO_URI",
	"JWT_SECRET",
	"RAZORPAY_KEY_ID",
	"RAZORPAY_KEY_SECRET",
}

// Validate fails fast when a required secret or connection string is absent.
func Validate() error {
	if err := Load(); err != nil {
		return err
	}

	var missing []string
	for _, key := range required {
		if get(key, "") == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string       { _ = Load(); return get("MONGO_DB", defaultMongoDB) }
func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }
func AppPort() string       { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string        { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// JWTSecret has no default on purpose; callers must have run Validate().
func JWTSecret() string { _ = Load(); return get("JWT_SECRET", "") }

func RazorpayKeyID() string     { _ = Load(); return get("RAZORPAY_KEY_ID", "") }
func RazorpayKeySecret() string { _ = Load(); return get("RAZORPAY_KEY_SECRET", "") }

func DefaultCurrency() string { _ = Load(); return get("DEFAULT_CURRENCY", defaultCurrency) }

// NotifyInbox is the fixed address registration notifications are sent to.
func NotifyInbox() string { _ = Load(); return get("NOTIFY_INBOX", defaultNotifyInbox) }

// LogMongoURI enables the async MongoDB log handler when non-empty.
func LogMongoURI() string { _ = Load(); return get("LOG_MONGO_URI", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// Real environment variables win over both files.
	for key := range loaded {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			loaded[key] = strings.TrimSpace(value)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// SetForTest overrides a single key for the duration of a test.
// The returned func restores the previous value.
func SetForTest(key, value string) func() {
	mu.Lock()
	prev, had := values[key]
	values[key] = value
	mu.Unlock()

	return func() {
		mu.Lock()
		if had {
			values[key] = prev
		} else {
			delete(values, key)
		}
		mu.Unlock()
	}
}
