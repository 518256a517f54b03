package httpserver

import (
	"testing"

	"cryptodata-service/internal/domain"
)

func Test_mapStatus(t *testing.T) {
	cases := []struct {
		in  domain.SnapshotStatus
		out string
	}{
		{domain.SnapshotStatusQueued, "pending"},
		{domain.SnapshotStatusProcessing, "pending"},
		{domain.SnapshotStatusDone, "completed"},
		{domain.SnapshotStatusFailed, "failed"},
	}
	for _, c := range cases {
		if got := mapStatus(c.in); got != c.out {
			t.Fatalf("mapStatus(%v)=%v want %v", c.in, got, c.out)
		}
	}
}
