package mapper

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
)

// getString safely gets a string value from a record
func getString(fields repository.Fields, key string) string {
	if val, ok := fields[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// getBool safely gets a bool value from a record
func getBool(fields repository.Fields, key string) bool {
	if val, ok := fields[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

// getTime reads an epoch-millisecond timestamp. Decoders hand numbers back
// as different types depending on the backend.
func getTime(fields repository.Fields, key string) *time.Time {
	val, ok := fields[key]
	if !ok || val == nil {
		return nil
	}
	ms, ok := toMillis(val)
	if !ok {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}

func toMillis(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case time.Time:
		return v.UnixMilli(), true
	}
	return 0, false
}

func getSubTasks(fields repository.Fields, key string) ([]entity.SubTask, error) {
	val, ok := fields[key]
	if !ok || val == nil {
		return nil, nil
	}

	var items []any
	switch v := val.(type) {
	case []any:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("subtasks: unexpected type %T", val)
	}

	subTasks := make([]entity.SubTask, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("subtasks: unexpected item type %T", item)
		}
		st := repository.Fields(m)
		subTasks = append(subTasks, entity.SubTask{
			ID:        getString(st, subTaskID),
			Title:     getString(st, subTaskTitle),
			Completed: getBool(st, subTaskCompleted),
		})
	}
	return subTasks, nil
}
