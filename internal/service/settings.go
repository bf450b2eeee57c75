package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"tebex-support-bot/internal/repository"
)

// SettingKind tags the parsed representation of a settings row.
type SettingKind int

const (
	KindNumber SettingKind = iota
	KindText
	KindJSON
	KindChannelRef
	KindRoleRef
	KindUserRef
)

// SettingValue is the tagged union a settings row parses into. Exactly one
// of the payload fields is meaningful for a given Kind.
type SettingValue struct {
	Kind SettingKind
	Num  int
	Text string
	JSON json.RawMessage
}

// Ref returns the Discord snowflake carried by channel/role/user settings.
func (v *SettingValue) Ref() string {
	return v.Text
}

type SettingsService interface {
	Initialize(ctx context.Context)
	Get(key string) *SettingValue
	Text(key string) string
	Number(key string) (int, bool)
	Set(ctx context.Context, key, raw string) error
	DataType(key string) string
	Keys() []string
}

type settingsServiceImpl struct {
	repo   repository.SettingRepository
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]SettingValue
	types  map[string]string
}

func NewSettingsService(repo repository.SettingRepository, logger *slog.Logger) SettingsService {
	return &settingsServiceImpl{
		repo:   repo,
		logger: logger.With("component", "settings"),
		values: make(map[string]SettingValue),
		types:  make(map[string]string),
	}
}

// Initialize loads every settings row into memory. A load failure is logged
// and leaves the store empty; callers of Get observe nil and fail soft.
func (s *settingsServiceImpl) Initialize(ctx context.Context) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("unable to load settings from database", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		value, err := parseSetting(row.DataType, row.Value)
		if err != nil {
			s.logger.Error("skipping setting with bad value",
				"setting", row.Name, "data_type", row.DataType, "error", err)
			continue
		}

		s.values[row.Name] = *value
		s.types[row.Name] = row.DataType
	}

	s.logger.Info("loaded settings from database", "loaded", len(s.values), "total", len(rows))
}

func (s *settingsServiceImpl) Get(key string) *SettingValue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil
	}
	return &value
}

// Text returns the string payload of a setting, or "" when the setting is
// unknown or not string-shaped. Callers treat "" as "not configured".
func (s *settingsServiceImpl) Text(key string) string {
	value := s.Get(key)
	if value == nil {
		return ""
	}
	return value.Text
}

func (s *settingsServiceImpl) Number(key string) (int, bool) {
	value := s.Get(key)
	if value == nil || value.Kind != KindNumber {
		return 0, false
	}
	return value.Num, true
}

// Set rejects unknown keys: settings are not dynamically creatable.
func (s *settingsServiceImpl) Set(ctx context.Context, key, raw string) error {
	s.mu.RLock()
	dataType, known := s.types[key]
	s.mu.RUnlock()

	if !known {
		s.logger.Error("refusing to set unknown setting", "setting", key)
		return fmt.Errorf("unknown setting: %q", key)
	}

	value, err := parseSetting(dataType, raw)
	if err != nil {
		return fmt.Errorf("parse %q as %s: %w", key, dataType, err)
	}

	if err := s.repo.UpdateValue(ctx, key, raw); err != nil {
		return fmt.Errorf("persist setting %q: %w", key, err)
	}

	s.mu.Lock()
	s.values[key] = *value
	s.mu.Unlock()

	return nil
}

func (s *settingsServiceImpl) DataType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types[key]
}

func (s *settingsServiceImpl) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

func parseSetting(dataType, raw string) (*SettingValue, error) {
	switch dataType {
	case "number":
		num, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return &SettingValue{Kind: KindNumber, Num: num}, nil
	case "object":
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("invalid json")
		}
		return &SettingValue{Kind: KindJSON, JSON: json.RawMessage(raw)}, nil
	case "string":
		return &SettingValue{Kind: KindText, Text: raw}, nil
	case "channel_id":
		return &SettingValue{Kind: KindChannelRef, Text: raw}, nil
	case "role_id":
		return &SettingValue{Kind: KindRoleRef, Text: raw}, nil
	case "user_id":
		return &SettingValue{Kind: KindUserRef, Text: raw}, nil
	default:
		return nil, fmt.Errorf("unrecognized data_type %q", dataType)
	}
}
