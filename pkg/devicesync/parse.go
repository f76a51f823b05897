package devicesync

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseUpdate extracts the device-list update from a raw /sync response.
// Values keep whatever JSON type the server sent, so a malformed list
// reaches SanitizeIDs as-is.
func ParseUpdate(raw []byte) (Update, error) {
	if !gjson.ValidBytes(raw) {
		return Update{}, fmt.Errorf("sync response is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Update{}, fmt.Errorf("sync response is not a JSON object")
	}

	update := Update{
		DeviceLists: DeviceLists{
			Changed: value(root.Get("device_lists.changed")),
			Left:    value(root.Get("device_lists.left")),
		},
		UnusedFallbackKeyTypes: value(root.Get("device_unused_fallback_key_types")),
	}

	if counts := root.Get("device_one_time_keys_count"); counts.IsObject() {
		update.OneTimeKeyCounts = make(map[string]interface{})
		counts.ForEach(func(key, v gjson.Result) bool {
			update.OneTimeKeyCounts[key.String()] = v.Value()
			return true
		})
	}

	return update, nil
}

// value returns nil for absent or null fields.
func value(r gjson.Result) interface{} {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return r.Value()
}
