package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/benvon/smart-journal/internal/models"
)

// reminderColumn maps a nullable jsonb column onto *models.ReminderSetting
type reminderColumn struct {
	setting **models.ReminderSetting
}

// Scan implements sql.Scanner
func (c reminderColumn) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c.setting = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported reminder_setting column type %T", src)
	}

	setting := &models.ReminderSetting{}
	if err := json.Unmarshal(raw, setting); err != nil {
		return fmt.Errorf("failed to unmarshal reminder_setting: %w", err)
	}
	*c.setting = setting
	return nil
}

// Value implements driver.Valuer
func (c reminderColumn) Value() (driver.Value, error) {
	if c.setting == nil || *c.setting == nil {
		return nil, nil
	}
	raw, err := json.Marshal(*c.setting)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reminder_setting: %w", err)
	}
	return raw, nil
}
