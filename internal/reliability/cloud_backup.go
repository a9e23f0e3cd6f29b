package reliability

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// CloudBackupService replicates local backup archives to an S3-compatible
// object store and manages remote retention.
type CloudBackupService struct {
	s3      *S3Client
	backups *BackupService
	log     zerolog.Logger
}

// NewCloudBackupService creates a cloud backup service.
func NewCloudBackupService(s3 *S3Client, backups *BackupService, log zerolog.Logger) *CloudBackupService {
	return &CloudBackupService{
		s3:      s3,
		backups: backups,
		log:     log.With().Str("service", "cloud_backup").Logger(),
	}
}

// UploadArchive uploads a local archive to the object store.
func (s *CloudBackupService) UploadArchive(ctx context.Context, archive *Archive) error {
	file, err := os.Open(archive.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	if err := s.s3.Upload(ctx, archive.Filename, file); err != nil {
		return err
	}

	s.log.Info().
		Str("archive", archive.Filename).
		Int64("size_bytes", archive.SizeBytes).
		Str("bucket", s.s3.Bucket()).
		Msg("Archive uploaded")

	return nil
}

// CreateAndUpload creates a fresh local archive and replicates it to the
// object store.
func (s *CloudBackupService) CreateAndUpload(ctx context.Context) (*Archive, error) {
	archive, err := s.backups.CreateArchive()
	if err != nil {
		return nil, err
	}

	if err := s.UploadArchive(ctx, archive); err != nil {
		return nil, err
	}

	return archive, nil
}

// ListRemote lists archives stored in the object store, newest first.
// The returned entries carry no local path.
func (s *CloudBackupService) ListRemote(ctx context.Context) ([]Archive, error) {
	objects, err := s.s3.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote archives: %w", err)
	}

	now := time.Now()
	archives := make([]Archive, 0, len(objects))

	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := s.s3.stripPrefix(*obj.Key)
		timestamp, ok := ParseArchiveTimestamp(filename)
		if !ok {
			s.log.Warn().Str("key", *obj.Key).Msg("Skipping object with unparseable archive name")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}

		archives = append(archives, Archive{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp.After(archives[j].Timestamp)
	})

	return archives, nil
}

// RotateRemote deletes remote archives beyond the keep count, never dropping
// below the minimum retention floor. Returns the number deleted.
func (s *CloudBackupService) RotateRemote(ctx context.Context, keep int) (int, error) {
	if keep < minArchivesToKeep {
		keep = minArchivesToKeep
	}

	archives, err := s.ListRemote(ctx)
	if err != nil {
		return 0, err
	}

	if len(archives) <= keep {
		s.log.Debug().Int("count", len(archives)).Msg("Too few remote archives to rotate")
		return 0, nil
	}

	deleted := 0
	for _, archive := range archives[keep:] {
		if err := s.s3.Delete(ctx, archive.Filename); err != nil {
			s.log.Error().
				Err(err).
				Str("archive", archive.Filename).
				Msg("Failed to delete remote archive")
			continue
		}

		s.log.Info().
			Str("archive", archive.Filename).
			Time("timestamp", archive.Timestamp).
			Msg("Deleted remote archive")

		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(archives)-deleted).
		Msg("Remote archive rotation completed")

	return deleted, nil
}
