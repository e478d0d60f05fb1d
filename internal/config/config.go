// Package config loads the engine's INI-style boot file: four sections
// describing the storage connection and janitor interval, mirroring the
// original Python entrypoint's configparser-based boot.ini.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Config is the fully parsed boot configuration.
type Config struct {
	// EngineURL holds the [engine_url] section: driver, user, password,
	// host, port, database.
	EngineURL EngineURL

	// EngineURLQuery holds driver-specific query parameters from
	// [engine_url_query].
	EngineURLQuery map[string]string

	// EngineOtherParams holds constructor parameters for the store
	// connection from [engine_other_params]; values are parsed as Go
	// literal expressions (ints, floats, bools, quoted strings).
	EngineOtherParams map[string]any

	// CheckInterval is the janitor sweep period ([other] check_interval,
	// seconds, default 600).
	CheckInterval time.Duration

	// MetricsEnabled gates the /metrics endpoint ([other] metrics).
	MetricsEnabled bool

	// Raw exposes the underlying [other] section for driver-specific hints
	// not otherwise modeled (e.g. oracle_version in the original).
	Raw map[string]string
}

// EngineURL describes the persistent store connection.
type EngineURL struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// Load parses the INI boot file at path.
func Load(path string) (Config, error) {
	cfg := Config{
		EngineURLQuery:    map[string]string{},
		EngineOtherParams: map[string]any{},
		CheckInterval:     600 * time.Second,
		Raw:               map[string]string{},
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	if sec, err := f.GetSection("engine_url"); err == nil {
		cfg.EngineURL = EngineURL{
			Driver:   sec.Key("driver").String(),
			User:     sec.Key("user").String(),
			Password: sec.Key("password").String(),
			Host:     sec.Key("host").String(),
			Port:     sec.Key("port").String(),
			Database: sec.Key("database").String(),
		}
	}

	if sec, err := f.GetSection("engine_url_query"); err == nil {
		for _, k := range sec.Keys() {
			if strings.TrimSpace(k.Value()) != "" {
				cfg.EngineURLQuery[k.Name()] = k.Value()
			}
		}
	}

	if sec, err := f.GetSection("engine_other_params"); err == nil {
		for _, k := range sec.Keys() {
			v, err := parseLiteral(k.Value())
			if err != nil {
				return cfg, fmt.Errorf("engine_other_params.%s: %w", k.Name(), err)
			}
			cfg.EngineOtherParams[k.Name()] = v
		}
	}

	if sec, err := f.GetSection("other"); err == nil {
		for _, k := range sec.Keys() {
			cfg.Raw[k.Name()] = k.Value()
		}
		if v := strings.TrimSpace(sec.Key("check_interval").String()); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("other.check_interval: %w", err)
			}
			cfg.CheckInterval = time.Duration(n) * time.Second
		}
		cfg.MetricsEnabled = sec.Key("metrics").MustBool(false)
	}

	return cfg, nil
}

// parseLiteral parses a Go-expression-like literal: quoted string, bool,
// int, or float — mirroring the original's use of ast.literal_eval on
// engine_other_params values.
func parseLiteral(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if (strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) ||
		(strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) {
		return s[1 : len(s)-1], nil
	}
	if s == "true" || s == "True" {
		return true, nil
	}
	if s == "false" || s == "False" {
		return false, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return fl, nil
	}
	return nil, fmt.Errorf("unrecognized literal %q", raw)
}
