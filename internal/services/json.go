package services

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func mustJSONValue(v any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}
