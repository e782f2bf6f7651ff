package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TaskMap maps task names to dotProject task ids, remembering insertion order.
type TaskMap struct {
	names []string
	ids   map[string]string
}

// NewTaskMap returns an empty TaskMap.
func NewTaskMap() *TaskMap {
	return &TaskMap{ids: make(map[string]string)}
}

// Len returns the number of tasks.
func (m *TaskMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Get returns the id for name.
func (m *TaskMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.ids[name]
	return id, ok
}

// NameOf returns the name mapped to id.
func (m *TaskMap) NameOf(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, name := range m.names {
		if m.ids[name] == id {
			return name, true
		}
	}
	return "", false
}

// Names returns task names in insertion order.
func (m *TaskMap) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// put inserts or replaces without uniqueness checks.
func (m *TaskMap) put(name, id string) {
	if _, ok := m.ids[name]; !ok {
		m.names = append(m.names, name)
	}
	m.ids[name] = id
}

// MarshalJSON writes the tasks as a JSON object in insertion order.
func (m *TaskMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.ids[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
// A later duplicate key replaces the earlier value, as encoding/json does.
func (m *TaskMap) UnmarshalJSON(data []byte) error {
	*m = TaskMap{ids: make(map[string]string)}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tasks: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tasks: expected string key, got %v", tok)
		}
		var id string
		if err := dec.Decode(&id); err != nil {
			return fmt.Errorf("tasks: value of %q: %w", name, err)
		}
		m.put(name, id)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
