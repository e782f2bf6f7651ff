package record

import (
	"fmt"
	"strings"

	"dpclient/internal/apperr"
	"dpclient/internal/output"
)

// GetConfig reports one setting as "name: value", or all settings one per
// line when name is empty.
func GetConfig(r *Record, name string) (string, error) {
	if name == "" {
		return output.Pairs(Settings, func(s string) string {
			v, _ := r.Setting(s)
			return v
		}), nil
	}
	v, err := r.Setting(name)
	if err != nil {
		return "", err
	}
	return output.Pair(name, v), nil
}

// SetConfig stores the trimmed value under a recognized setting.
func SetConfig(r *Record, name, value string) (string, error) {
	if err := r.SetSetting(name, strings.TrimSpace(value)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s saved in config", name), nil
}

// GetTask reports one task as "name: id", or every task in insertion order
// under a "tasks:" header when name is empty.
func GetTask(r *Record, name string) (string, error) {
	if name == "" {
		return output.TaskList(r.Tasks.Names(), func(n string) string {
			id, _ := r.Tasks.Get(n)
			return id
		}), nil
	}
	id, err := ResolveTask(r, name)
	if err != nil {
		return "", err
	}
	return output.Pair(name, id), nil
}

// SetTask maps name to id. Both are trimmed. Re-adding an identical pair is
// a no-op; reusing a name or an id for a different pairing is rejected.
func SetTask(r *Record, name, id string) (string, error) {
	name = strings.TrimSpace(name)
	id = strings.TrimSpace(id)
	if name == "" || id == "" {
		return "", apperr.New(apperr.Usage, "task name and id must not be empty").WithTopic("task")
	}
	if r.Tasks == nil {
		r.Tasks = NewTaskMap()
	}

	if existing, ok := r.Tasks.Get(name); ok {
		if existing == id {
			return "task saved", nil
		}
		return "", apperr.New(apperr.DuplicateTask, "%s is already mapped to %s", name, existing).WithTopic("task")
	}
	if other, ok := r.Tasks.NameOf(id); ok {
		return "", apperr.New(apperr.DuplicateTask, "id %s is already used by %s", id, other).WithTopic("task")
	}

	r.Tasks.put(name, id)
	return "task saved", nil
}

// ResolveTask returns the dotProject id for a task name.
func ResolveTask(r *Record, name string) (string, error) {
	id, ok := r.Tasks.Get(name)
	if !ok {
		return "", apperr.New(apperr.UnknownTask, "%s", name).WithTopic("task")
	}
	return id, nil
}
