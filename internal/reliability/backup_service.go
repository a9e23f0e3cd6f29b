// Package reliability provides database backup, archival and off-site
// replication services.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/database"
	"github.com/donkruger/share-transfer-template-sub000/internal/version"
)

const (
	archivePrefix     = "selector-backup-"
	archiveSuffix     = ".tar.gz"
	archiveTimeLayout = "2006-01-02-150405"
	metadataFilename  = "backup-metadata.json"

	// minArchivesToKeep is the rotation floor: the newest archives are never
	// deleted regardless of the configured retention.
	minArchivesToKeep = 3
)

// BackupService produces consistent snapshots of the application databases
// and bundles them into checksummed tar.gz archives.
type BackupService struct {
	databases map[string]*database.DB
	dataDir   string
	backupDir string
	log       zerolog.Logger
}

// ArchiveMetadata describes the contents of a backup archive.
type ArchiveMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database snapshot inside an archive.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// Archive describes a backup archive on local disk.
type Archive struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// NewBackupService creates a backup service over the given databases.
func NewBackupService(databases map[string]*database.DB, dataDir, backupDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		dataDir:   dataDir,
		backupDir: backupDir,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// BackupDir returns the local directory archives are written to.
func (s *BackupService) BackupDir() string {
	return s.backupDir
}

// DatabaseNames returns the names of all managed databases, sorted.
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent snapshot of the named database to
// destPath. The WAL is checkpointed first so the snapshot contains all
// committed writes.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		s.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint before backup failed")
	}

	// VACUUM INTO refuses to overwrite an existing file
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear stale snapshot %s: %w", destPath, err)
	}

	return db.VacuumInto(destPath)
}

// CreateArchive snapshots every database into a staging directory, writes
// checksummed metadata and bundles everything into a tar.gz archive in the
// backup directory. Returns the created archive's details.
func (s *BackupService) CreateArchive() (*Archive, error) {
	start := time.Now()
	s.log.Info().Msg("Starting backup archive")

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := ArchiveMetadata{
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	names := s.DatabaseNames()
	for _, name := range names {
		snapshotPath := filepath.Join(stagingDir, name+".db")

		s.log.Debug().Str("database", name).Msg("Snapshotting database")
		if err := s.BackupDatabase(name, snapshotPath); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", name, err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s snapshot: %w", name, err)
		}

		checksum, err := checksumFile(snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s snapshot: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  name + ".db",
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
	}

	metadataPath := filepath.Join(stagingDir, metadataFilename)
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	timestamp := time.Now()
	archiveName := archivePrefix + timestamp.Format(archiveTimeLayout) + archiveSuffix
	archivePath := filepath.Join(s.backupDir, archiveName)

	files := make([]string, 0, len(names)+1)
	for _, name := range names {
		files = append(files, name+".db")
	}
	files = append(files, metadataFilename)

	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	s.log.Info().
		Str("archive", archiveName).
		Int64("size_bytes", info.Size()).
		Dur("duration", time.Since(start)).
		Msg("Backup archive created")

	return &Archive{
		Filename:  archiveName,
		Path:      archivePath,
		Timestamp: timestamp,
		SizeBytes: info.Size(),
	}, nil
}

// ListArchives lists local backup archives, newest first.
func (s *BackupService) ListArchives() ([]Archive, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Archive{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	now := time.Now()
	archives := make([]Archive, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		timestamp, ok := ParseArchiveTimestamp(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		archives = append(archives, Archive{
			Filename:  entry.Name(),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Timestamp: timestamp,
			SizeBytes: info.Size(),
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp.After(archives[j].Timestamp)
	})

	return archives, nil
}

// RotateArchives deletes local archives beyond the keep count, never
// dropping below the minimum retention floor. Returns the number deleted.
func (s *BackupService) RotateArchives(keep int) (int, error) {
	if keep < minArchivesToKeep {
		keep = minArchivesToKeep
	}

	archives, err := s.ListArchives()
	if err != nil {
		return 0, err
	}

	if len(archives) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, archive := range archives[keep:] {
		if err := os.Remove(archive.Path); err != nil {
			s.log.Error().
				Err(err).
				Str("archive", archive.Filename).
				Msg("Failed to delete old archive")
			continue
		}

		s.log.Info().
			Str("archive", archive.Filename).
			Time("timestamp", archive.Timestamp).
			Msg("Deleted old archive")

		deleted++
	}

	return deleted, nil
}

// ParseArchiveTimestamp extracts the creation time from an archive filename.
// Archive names follow selector-backup-2006-01-02-150405.tar.gz.
func ParseArchiveTimestamp(filename string) (time.Time, bool) {
	if !strings.HasPrefix(filename, archivePrefix) || !strings.HasSuffix(filename, archiveSuffix) {
		return time.Time{}, false
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(filename, archivePrefix), archiveSuffix)
	timestamp, err := time.Parse(archiveTimeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}

	return timestamp, true
}

// checksumFile calculates the SHA256 checksum of a file.
func checksumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// writeMetadata writes archive metadata to a JSON file.
func writeMetadata(path string, metadata ArchiveMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive bundles the named files from sourceDir into a tar.gz archive.
func createArchive(archivePath, sourceDir string, filenames []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	return nil
}

// addFileToArchive adds a single file to a tar archive.
func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if _, err := io.Copy(tarWriter, file); err != nil {
		return err
	}

	return nil
}
