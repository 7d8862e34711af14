package kafka

import (
	"encoding/json"

	audit "landregistry/pkg/platform/audit"
)

func jsonValue(e audit.Event) ([]byte, error) {
	return json.Marshal(encode(e))
}
