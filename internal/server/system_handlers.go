// Package server provides the HTTP server and routing for the instrument
// search and selection service.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/donkruger/share-transfer-template-sub000/internal/di"
	"github.com/donkruger/share-transfer-template-sub000/internal/scheduler"
	"github.com/donkruger/share-transfer-template-sub000/internal/version"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	container   *di.Container
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		container:   container,
	}
}

// SystemStatusResponse describes the system status payload
type SystemStatusResponse struct {
	Status           string  `json:"status"`
	Version          string  `json:"version"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryPercent    float64 `json:"memory_percent"`
	InstrumentCount  int     `json:"instrument_count"`
	SessionCount     int     `json:"session_count"`
	WalletCount      int     `json:"wallet_count"`
	UniverseLoadedAt string  `json:"universe_loaded_at,omitempty"`
}

// DBInfo describes one database in the stats payload
type DBInfo struct {
	Name          string  `json:"name"`
	SizeMB        float64 `json:"size_mb"`
	WALSizeMB     float64 `json:"wal_size_mb"`
	PageCount     int64   `json:"page_count"`
	PageSize      int64   `json:"page_size"`
	FreelistCount int64   `json:"freelist_count"`
}

// DatabaseStatsResponse describes the database stats payload
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// DiskUsageResponse describes the disk usage payload
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
	BackupsMB float64 `json:"backups_mb"`
	TotalMB   float64 `json:"total_mb"`
}

// JobsStatusResponse describes the job history payload
type JobsStatusResponse struct {
	Runs      []scheduler.RunRecord `json:"runs"`
	TotalRuns int                   `json:"total_runs"`
}

// HandleSystemStatus returns system status including resource usage and
// service counters
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       version.Version,
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
	}

	if h.container != nil {
		if h.container.UniverseCache != nil {
			response.InstrumentCount = h.container.UniverseCache.Count()
			if loadedAt := h.container.UniverseCache.LoadedAt(); !loadedAt.IsZero() {
				response.UniverseLoadedAt = loadedAt.Format(time.RFC3339)
			}
		}
		if h.container.SessionRegistry != nil {
			response.SessionCount = h.container.SessionRegistry.Count()
		}
		if h.container.WalletEngine != nil {
			response.WalletCount = h.container.WalletEngine.Count()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleSearchMetrics returns aggregated search behavior statistics
func (h *SystemHandlers) HandleSearchMetrics(w http.ResponseWriter, r *http.Request) {
	if h.container == nil || h.container.SearchService == nil {
		http.Error(w, "Search service not available", http.StatusServiceUnavailable)
		return
	}

	snapshot := h.container.SearchService.Metrics().Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// HandleDatabaseStats returns per-database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	databases := []DBInfo{}
	totalSizeMB := 0.0

	if h.container != nil {
		all := h.container.Databases()

		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			db := all[name]
			if db == nil {
				continue
			}

			stats, err := db.GetStats()
			if err != nil {
				h.log.Warn().Err(err).Str("database", name).Msg("Failed to collect database stats")
				continue
			}

			sizeMB := float64(stats.SizeBytes) / 1024 / 1024
			totalSizeMB += sizeMB

			databases = append(databases, DBInfo{
				Name:          name,
				SizeMB:        sizeMB,
				WALSizeMB:     float64(stats.WALSizeBytes) / 1024 / 1024,
				PageCount:     stats.PageCount,
				PageSize:      stats.PageSize,
				FreelistCount: stats.FreelistCount,
			})
		}
	}

	response := DatabaseStatsResponse{
		Databases:   databases,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDiskUsage returns disk usage statistics
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	dataDirSize := h.getDirSize(h.dataDir)

	backupsDir := filepath.Join(h.dataDir, "backups")
	if h.container != nil && h.container.BackupService != nil {
		backupsDir = h.container.BackupService.BackupDir()
	}
	backupsSize := h.getDirSize(backupsDir)

	response := DiskUsageResponse{
		DataDirMB: dataDirSize,
		BackupsMB: backupsSize,
		TotalMB:   dataDirSize + backupsSize,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleJobsStatus returns recent job run history
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting jobs status")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs := []scheduler.RunRecord{}
	if h.container != nil && h.container.JobHistory != nil {
		recent, err := h.container.JobHistory.Recent(limit)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to load job history")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		runs = recent
	}

	response := JobsStatusResponse{
		Runs:      runs,
		TotalRuns: len(runs),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleListBackups lists local backup archives, newest first
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.container == nil || h.container.BackupService == nil {
		http.Error(w, "Backup service not available", http.StatusServiceUnavailable)
		return
	}

	archives, err := h.container.BackupService.ListArchives()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backup archives")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"archives": archives,
		"count":    len(archives),
	})
}

// ============================================================================
// Job Trigger Endpoints
// ============================================================================

// HandleTriggerSessionCleanup runs the session cleanup job immediately
// POST /api/system/jobs/session-cleanup
func (h *SystemHandlers) HandleTriggerSessionCleanup(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.container.SessionCleanupJob, "Session cleanup")
}

// HandleTriggerUniverseRefresh runs the universe refresh job immediately
// POST /api/system/jobs/universe-refresh
func (h *SystemHandlers) HandleTriggerUniverseRefresh(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.container.UniverseRefreshJob, "Universe refresh")
}

// HandleTriggerWALCheckpoint runs the WAL checkpoint job immediately
// POST /api/system/jobs/wal-checkpoint
func (h *SystemHandlers) HandleTriggerWALCheckpoint(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.container.WALCheckpointJob, "WAL checkpoint")
}

// HandleTriggerBackup runs the backup job immediately
// POST /api/system/jobs/backup
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.container.BackupJob, "Backup")
}

// HandleTriggerBackupRotation runs the backup rotation job immediately
// POST /api/system/jobs/backup-rotation
func (h *SystemHandlers) HandleTriggerBackupRotation(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.container.BackupRotationJob, "Backup rotation")
}

// triggerJob runs a registered job synchronously through the scheduler so the
// run is recorded in history and lifecycle events fire.
func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job, label string) {
	if job == nil || h.container == nil || h.container.Scheduler == nil {
		h.log.Warn().Str("job", label).Msg("Job not registered")
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": label + " job not registered",
		})
		return
	}

	h.log.Info().Str("job", label).Msg("Manual job trigger")

	if err := h.container.Scheduler.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", label).Msg("Manually triggered job failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": label + " completed successfully",
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so status requests stay fast while still
// providing a real reading
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
