// Package record defines the persisted dpclient document: dotProject
// settings plus the task name to task id mapping.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dpclient/internal/apperr"
)

// Setting names, in display order.
const (
	SettingServer   = "server"
	SettingUser     = "user"
	SettingPassword = "password"
)

// Settings lists the recognized settings in the order they are displayed.
var Settings = []string{SettingServer, SettingUser, SettingPassword}

// Record is the whole JSON document stored on disk.
type Record struct {
	Server   string   `json:"server"`
	User     string   `json:"user"`
	Password string   `json:"password"`
	Tasks    *TaskMap `json:"tasks"`

	migrated bool
}

// Default returns the record used when no data file exists.
func Default() *Record {
	return &Record{Tasks: NewTaskMap()}
}

// Migrated reports whether Parse had to fill in fields missing from the
// document. Such a record should be saved back.
func (r *Record) Migrated() bool { return r.migrated }

// Setting returns the value of a recognized setting.
func (r *Record) Setting(name string) (string, error) {
	p, err := r.field(name)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetSetting stores value under a recognized setting. The value is stored as is.
func (r *Record) SetSetting(name, value string) error {
	p, err := r.field(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (r *Record) field(name string) (*string, error) {
	switch name {
	case SettingServer:
		return &r.Server, nil
	case SettingUser:
		return &r.User, nil
	case SettingPassword:
		return &r.Password, nil
	}
	return nil, apperr.New(apperr.UnknownSetting, "%s", name).WithTopic("config")
}

// Complete reports whether server, user and password are all set.
func (r *Record) Complete() bool {
	return r.Server != "" && r.User != "" && r.Password != ""
}

// Missing returns the names of empty settings in display order.
func (r *Record) Missing() []string {
	var missing []string
	for _, name := range Settings {
		if v, _ := r.Setting(name); v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Marshal encodes the record as indented JSON with a trailing newline.
func (r *Record) Marshal() ([]byte, error) {
	if r.Tasks == nil {
		r.Tasks = NewTaskMap()
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse decodes and validates a stored document. Invalid JSON or a
// document that does not match the record schema is a CorruptData error.
// Keys missing from older documents are filled with defaults.
func Parse(data []byte) (*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.New(apperr.CorruptData, "file is empty")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.Wrap(apperr.CorruptData, err, "invalid JSON")
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, apperr.Wrap(apperr.CorruptData, err, "decode record")
	}

	obj := raw.(map[string]any)
	for _, key := range []string{SettingServer, SettingUser, SettingPassword, "tasks"} {
		if v, ok := obj[key]; !ok || v == nil {
			rec.migrated = true
		}
	}
	if rec.Tasks == nil {
		rec.Tasks = NewTaskMap()
	}
	return rec, nil
}
