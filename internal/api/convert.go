package api

import (
	"fmt"

	"github.com/artifactengine/mce/internal/domain"
)

func stringField(kwargs map[string]any, key string) string {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intField(kwargs map[string]any, key string) int {
	v, ok := kwargs[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// toArtifactDef builds an artifact definition from JSON-decoded kwargs
// (add/update request bodies). object_id is required.
func toArtifactDef(kwargs map[string]any) (domain.ArtifactDef, error) {
	id := stringField(kwargs, "object_id")
	if id == "" {
		return domain.ArtifactDef{}, fmt.Errorf("%w: object_id is required", domain.ErrBadArgument)
	}
	return domain.ArtifactDef{
		ObjectID:   id,
		ObjectName: stringField(kwargs, "object_name"),
		CustomTag:  stringField(kwargs, "custom_tag"),
		ParentID:   stringField(kwargs, "parent_id"),
		Remark:     stringField(kwargs, "remark"),
		SortNumber: intField(kwargs, "sort_number"),
		PythonCode: stringField(kwargs, "python_code"),
		PythonExpr: stringField(kwargs, "python_expr"),
		LRUMaxSize: intField(kwargs, "lru_maxsize"),
		TTLSeconds: intField(kwargs, "ttl_seconds"),
	}, nil
}

// updateFields extracts only the updatable columns present in kwargs,
// leaving object_id (the row key) out of the field set.
func updateFields(kwargs map[string]any) map[string]any {
	fields := map[string]any{}
	for _, col := range []string{
		"object_name", "custom_tag", "parent_id", "remark", "sort_number",
		"python_code", "python_expr", "lru_maxsize", "ttl_seconds",
	} {
		if v, ok := kwargs[col]; ok {
			fields[col] = v
		}
	}
	return fields
}

// defAsMap renders a persisted definition the way query()'s JSON response
// exposes each row.
func defAsMap(d domain.ArtifactDef) map[string]any {
	return map[string]any{
		"object_id":         d.ObjectID,
		"object_name":       d.ObjectName,
		"custom_tag":        d.CustomTag,
		"parent_id":         d.ParentID,
		"remark":            d.Remark,
		"sort_number":       d.SortNumber,
		"python_code":       d.PythonCode,
		"python_expr":       d.PythonExpr,
		"lru_maxsize":       d.LRUMaxSize,
		"ttl_seconds":       d.TTLSeconds,
		"last_updated_time": d.LastUpdatedTime.Unix(),
	}
}
