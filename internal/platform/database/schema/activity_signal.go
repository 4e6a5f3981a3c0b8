package schema

// ActivitySignalTable represents the 'activity.signal' table
type ActivitySignalTable struct {
	Table      string
	EntityID   string
	EntityType string
	Kind       string
	Count      string
	Bucket     string
}

// ActivitySignal is the schema definition for activity.signal.
// Append/increment only: one row per (entityid, kind, bucket), where bucket
// is the signal timestamp truncated to the hour.
var ActivitySignal = ActivitySignalTable{
	Table:      "activity.signal",
	EntityID:   "entityid",
	EntityType: "entitytype",
	Kind:       "kind",
	Count:      "count",
	Bucket:     "bucket",
}

func (t ActivitySignalTable) Columns() []string {
	return []string{t.EntityID, t.EntityType, t.Kind, t.Count, t.Bucket}
}
