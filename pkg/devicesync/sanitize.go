// Package devicesync filters malformed user IDs out of end-to-end
// encryption device-list updates before the crypto store sees them.
package devicesync

import (
	"context"
	"reflect"
	"strings"
)

// stringTypeError is the text the crypto store reports when a device list
// holds a non-string entry.
const stringTypeError = "Expect value to be String"

// Logger receives sanitizer warnings.
type Logger interface {
	Warnf(format string, v ...interface{})
}

// DeviceLists are the users whose device lists changed or who left every
// shared encrypted room. Entries come straight from the server and are not
// guaranteed to be strings.
type DeviceLists struct {
	Changed interface{}
	Left    interface{}
}

// Update is one device-list update delivered with a sync response.
// Counts and fallback key types are passed through untouched.
type Update struct {
	DeviceLists            DeviceLists
	OneTimeKeyCounts       map[string]interface{}
	UnusedFallbackKeyTypes interface{}
}

// UpdateFunc applies an Update to the crypto store.
type UpdateFunc func(ctx context.Context, update Update) error

// SanitizeIDs returns the non-blank string entries of value. A nil value
// yields an empty list; any other non-list yields an empty list and a
// warning. Dropped entries are reported in a single warning.
func SanitizeIDs(value interface{}, label string, log Logger) []string {
	if value == nil {
		return []string{}
	}

	switch ids := value.(type) {
	case []string:
		return keepValid(len(ids), func(i int) interface{} { return ids[i] }, label, log)
	case []interface{}:
		return keepValid(len(ids), func(i int) interface{} { return ids[i] }, label, log)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		warnf(log, "device list %s is not a list (got %T), ignoring it", label, value)
		return []string{}
	}
	return keepValid(rv.Len(), func(i int) interface{} { return rv.Index(i).Interface() }, label, log)
}

func keepValid(n int, at func(int) interface{}, label string, log Logger) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, ok := at(i).(string)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		out = append(out, id)
	}
	if dropped := n - len(out); dropped > 0 {
		warnf(log, "dropped %d invalid entries from device list %s", dropped, label)
	}
	return out
}

// Wrap returns an UpdateFunc that sanitizes both device lists before
// calling next. A string type error from next is logged and treated as an
// applied update; every other error is returned unchanged.
func Wrap(next UpdateFunc, log Logger) UpdateFunc {
	return func(ctx context.Context, update Update) error {
		update.DeviceLists = DeviceLists{
			Changed: SanitizeIDs(update.DeviceLists.Changed, "changed", log),
			Left:    SanitizeIDs(update.DeviceLists.Left, "left", log),
		}

		err := next(ctx, update)
		if err != nil && strings.Contains(err.Error(), stringTypeError) {
			warnf(log, "ignoring device list update rejected by crypto store: %v", err)
			return nil
		}
		return err
	}
}

func warnf(log Logger, format string, v ...interface{}) {
	if log != nil {
		log.Warnf(format, v...)
	}
}
