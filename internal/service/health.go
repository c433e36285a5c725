package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sapcs/internal/drive"
	"sapcs/internal/model"
)

// HealthReport is the outcome of an active backend probe.
type HealthReport struct {
	Status    string                 `json:"status"`
	Backend   string                 `json:"backend,omitempty"`
	Detail    string                 `json:"detail,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ProbeID   string                 `json:"probeId,omitempty"`
	FolderID  string                 `json:"folderId,omitempty"`
	Diagnosis *drive.FolderDiagnosis `json:"diagnosis,omitempty"`
}

const (
	HealthOK      = "ok"
	HealthError   = "error"
	HealthSkipped = "skipped"
)

// StorageHealth verifies the object backend end to end with a
// write-read-compare-delete round trip. On the drive backend no probe runs;
// writing throwaway files into the mirrored hierarchy would pollute it.
func (g *contentGateway) StorageHealth(ctx context.Context) *HealthReport {
	backend := g.cfg.Backend()
	if backend != model.BackendObject {
		return &HealthReport{
			Status:  HealthSkipped,
			Backend: backend,
			Detail:  "storage probe only runs on the object backend",
		}
	}

	probeID := fmt.Sprintf("health-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
	payload := []byte("ok " + time.Now().UTC().Format(time.RFC3339))

	if _, err := g.blob.Put(ctx, model.PutInput{
		DocumentID:  probeID,
		FileName:    "storage-health.txt",
		ContentType: "text/plain",
		Bytes:       payload,
	}); err != nil {
		return &HealthReport{Status: HealthError, Backend: backend, ProbeID: probeID, Error: "write probe: " + err.Error()}
	}

	stored, err := g.blob.Get(ctx, probeID)
	if err != nil {
		return &HealthReport{Status: HealthError, Backend: backend, ProbeID: probeID, Error: "read probe: " + err.Error()}
	}
	if stored == nil || !bytes.Equal(stored.Bytes, payload) {
		return &HealthReport{Status: HealthError, Backend: backend, ProbeID: probeID, Error: "read probe: content mismatch"}
	}

	// Cleanup is best effort; a leftover probe object is harmless.
	if err := g.blob.Remove(ctx, probeID); err != nil {
		logEvent("[SAP-HEALTH]", map[string]any{
			"action":  "probe-cleanup-failed",
			"probeId": probeID,
			"error":   err.Error(),
		})
	}

	return &HealthReport{Status: HealthOK, Backend: backend, ProbeID: probeID}
}

// ReplicationHealth introspects the mirror root folder and the effective
// Drive identity. It reports skipped when replication is off.
func (g *contentGateway) ReplicationHealth(ctx context.Context) *HealthReport {
	if !g.cfg.ReplicateToDrive() {
		return &HealthReport{Status: HealthSkipped, Detail: "drive replication is disabled"}
	}

	diagnosis, err := g.replicator.Diagnose(ctx)
	if err != nil {
		return &HealthReport{
			Status:   HealthError,
			FolderID: g.cfg.DriveFolderID(),
			Error:    err.Error(),
		}
	}
	return &HealthReport{Status: HealthOK, FolderID: diagnosis.FolderID, Diagnosis: diagnosis}
}
