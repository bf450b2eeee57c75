package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/repository"
)

func TestSettingsInitialize(t *testing.T) {
	db := testDB(t)
	seedSetting(t, db, "customer_role", "role_id", "role-123")
	seedSetting(t, db, "max_developers", "number", "2")
	seedSetting(t, db, "payment_log_channel", "channel_id", "")

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	assert.Equal(t, "role-123", settings.Text("customer_role"))
	assert.Equal(t, "role_id", settings.DataType("customer_role"))

	num, ok := settings.Number("max_developers")
	require.True(t, ok)
	assert.Equal(t, 2, num)

	assert.Equal(t, "", settings.Text("payment_log_channel"))
	assert.Nil(t, settings.Get("no_such_setting"))
	assert.ElementsMatch(t, []string{"customer_role", "max_developers", "payment_log_channel"}, settings.Keys())
}

func TestSettingsSkipsUnparseableRows(t *testing.T) {
	db := testDB(t)
	seedSetting(t, db, "max_developers", "number", "not-a-number")
	seedSetting(t, db, "customer_role", "role_id", "role-123")

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	_, ok := settings.Number("max_developers")
	assert.False(t, ok)
	assert.Equal(t, "role-123", settings.Text("customer_role"))
}

func TestSettingsSetPersists(t *testing.T) {
	db := testDB(t)
	seedSetting(t, db, "max_developers", "number", "2")

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	require.NoError(t, settings.Set(context.Background(), "max_developers", "5"))

	num, ok := settings.Number("max_developers")
	require.True(t, ok)
	assert.Equal(t, 5, num)

	// A fresh service sees the persisted value.
	reloaded := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	reloaded.Initialize(context.Background())
	num, ok = reloaded.Number("max_developers")
	require.True(t, ok)
	assert.Equal(t, 5, num)
}

func TestSettingsSetValidation(t *testing.T) {
	db := testDB(t)
	seedSetting(t, db, "max_developers", "number", "2")

	settings := NewSettingsService(repository.NewSettingRepository(db), testLogger())
	settings.Initialize(context.Background())

	assert.Error(t, settings.Set(context.Background(), "max_developers", "five"))
	assert.Error(t, settings.Set(context.Background(), "brand_new_key", "anything"))

	// Neither failed write touched the database.
	var row model.Setting
	require.NoError(t, db.Where("name = ?", "max_developers").First(&row).Error)
	assert.Equal(t, "2", row.Value)
}

func TestParseSetting(t *testing.T) {
	tests := []struct {
		dataType string
		raw      string
		wantErr  bool
		kind     SettingKind
	}{
		{"number", "42", false, KindNumber},
		{"number", "x", true, 0},
		{"string", "hello", false, KindText},
		{"object", `{"a":1}`, false, KindJSON},
		{"object", "{not json", true, 0},
		{"channel_id", "123456", false, KindChannelRef},
		{"role_id", "123456", false, KindRoleRef},
		{"user_id", "123456", false, KindUserRef},
		{"mystery", "123456", true, 0},
	}

	for _, tt := range tests {
		value, err := parseSetting(tt.dataType, tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "%s %q", tt.dataType, tt.raw)
			continue
		}
		require.NoError(t, err, "%s %q", tt.dataType, tt.raw)
		assert.Equal(t, tt.kind, value.Kind)
	}
}
