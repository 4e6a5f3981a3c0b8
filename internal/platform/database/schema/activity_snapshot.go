package schema

// ActivitySnapshotTable represents the 'activity.snapshot' table
type ActivitySnapshotTable struct {
	Table       string
	EntityID    string
	EntityType  string
	WindowHours string
	Period      string
	Votes       string
	Attendees   string
	Views       string
	GeneratedAt string
}

// ActivitySnapshot is the schema definition for activity.snapshot.
// One row per (entityid, windowhours, period); period is the window-aligned
// start time. Growth is only ever computed against a previously persisted
// row, never inferred.
var ActivitySnapshot = ActivitySnapshotTable{
	Table:       "activity.snapshot",
	EntityID:    "entityid",
	EntityType:  "entitytype",
	WindowHours: "windowhours",
	Period:      "period",
	Votes:       "votes",
	Attendees:   "attendees",
	Views:       "views",
	GeneratedAt: "generatedat",
}

func (t ActivitySnapshotTable) Columns() []string {
	return []string{t.EntityID, t.EntityType, t.WindowHours, t.Period, t.Votes, t.Attendees, t.Views, t.GeneratedAt}
}
