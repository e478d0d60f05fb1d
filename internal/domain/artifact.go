package domain

import "time"

// ArtifactDef is the persisted definition of a calc object, one row in
// mce_calc_object_info.
type ArtifactDef struct {
	ObjectID        string    `db:"object_id"`
	ObjectName      string    `db:"object_name"`
	CustomTag       string    `db:"custom_tag"`
	ParentID        string    `db:"parent_id"`
	Remark          string    `db:"remark"`
	SortNumber      int       `db:"sort_number"`
	PythonCode      string    `db:"python_code"`
	PythonExpr      string    `db:"python_expr"`
	LRUMaxSize      int       `db:"lru_maxsize"`
	TTLSeconds      int       `db:"ttl_seconds"`
	LastUpdatedTime time.Time `db:"last_updated_time"`
}

// HasCache reports whether the artifact carries a private LRU+TTL cache.
func (d ArtifactDef) HasCache() bool {
	return d.LRUMaxSize > 0 && d.TTLSeconds > 0
}

// Columns is the allow-list of persisted column names, used to validate
// dynamic query filters before they are interpolated into SQL.
var Columns = []string{
	"object_id", "object_name", "custom_tag", "parent_id", "remark",
	"sort_number", "python_code", "python_expr", "lru_maxsize",
	"ttl_seconds", "last_updated_time",
}

// IsColumn reports whether name is a known persisted column.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}
