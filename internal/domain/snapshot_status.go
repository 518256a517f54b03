package domain

type SnapshotStatus string

const (
	SnapshotStatusQueued     SnapshotStatus = "queued"
	SnapshotStatusProcessing SnapshotStatus = "processing"
	SnapshotStatusDone       SnapshotStatus = "done"
	SnapshotStatusFailed     SnapshotStatus = "failed"
)

// ParseSnapshotStatus maps a stored value back to a status; unknown values
// are treated as failed.
func ParseSnapshotStatus(s string) SnapshotStatus {
	switch SnapshotStatus(s) {
	case SnapshotStatusQueued, SnapshotStatusProcessing, SnapshotStatusDone:
		return SnapshotStatus(s)
	default:
		return SnapshotStatusFailed
	}
}
