package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/storage"
	"github.com/cocodas/prierboard/utils"
)

// UploadFile is one attachment received with a post write.
type UploadFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type MediaOptions struct {
	// StagingDir receives temp copies of uploads; empty means os.TempDir().
	StagingDir string
	// MaxBytes rejects larger files; zero disables the check.
	MaxBytes int64
}

// MediaService keeps a post's attachments consistent between the media table and the object store.
type MediaService struct {
	media   MediaStore
	objects storage.ObjectStore
	opts    MediaOptions
	logger  *zap.Logger
}

func NewMediaService(media MediaStore, objects storage.ObjectStore, opts MediaOptions, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{media: media, objects: objects, opts: opts, logger: logger}
}

// Upload stores every non-empty file and records it as an image of post. On failure the
// objects uploaded by this call are removed again; rows are left to the caller's transaction.
func (s *MediaService) Upload(ctx context.Context, post *models.Post, files []UploadFile) ([]models.PostMedia, error) {
	created := make([]models.PostMedia, 0, len(files))
	for _, f := range files {
		if isEmpty(f) {
			continue
		}
		key, err := s.stageAndUpload(ctx, f)
		if err != nil {
			s.discard(ctx, storageKeys(created))
			return nil, wrapMediaErr(MediaOpUpload, err)
		}
		m := models.PostMedia{
			PostID:     post.ID,
			Metadata:   f.Filename,
			MediaType:  models.MediaTypeImage,
			StorageKey: key,
		}
		if err := s.media.Create(ctx, &m); err != nil {
			s.discard(ctx, append(storageKeys(created), key))
			return nil, fmt.Errorf("save media record: %w", err)
		}
		created = append(created, m)
	}
	post.Media = append(post.Media, created...)
	s.logger.Debug("media uploaded", zap.Uint("post_id", post.ID), zap.Int("count", len(created)))
	return created, nil
}

// Reconcile removes the attachments named by deleteKeys and adds files, then makes the
// result the post's media set. Keys that do not belong to post are ignored. It returns the
// newly added media so callers can undo the uploads if their transaction fails later.
func (s *MediaService) Reconcile(ctx context.Context, deleteKeys []string, post *models.Post, files []UploadFile) ([]models.PostMedia, error) {
	existing, err := s.media.FindByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}

	doomed := make(map[string]struct{}, len(deleteKeys))
	for _, k := range deleteKeys {
		doomed[k] = struct{}{}
	}
	working := make([]models.PostMedia, 0, len(existing)+len(files))
	var removed []models.PostMedia
	for _, m := range existing {
		if _, ok := doomed[m.StorageKey]; ok {
			removed = append(removed, m)
			continue
		}
		working = append(working, m)
	}

	var added []models.PostMedia
	for _, f := range files {
		if isEmpty(f) {
			continue
		}
		key, err := s.stageAndUpload(ctx, f)
		if err != nil {
			s.discard(ctx, storageKeys(added))
			return nil, wrapMediaErr(MediaOpUpdate, err)
		}
		added = append(added, models.PostMedia{
			PostID:     post.ID,
			Metadata:   f.Filename,
			MediaType:  models.MediaTypeImage,
			StorageKey: key,
		})
	}

	keptCount := len(working)
	working = append(working, added...)
	if err := s.media.Replace(ctx, post.ID, working); err != nil {
		s.discard(ctx, storageKeys(added))
		return nil, fmt.Errorf("replace media: %w", err)
	}
	added = working[keptCount:]

	// objects go last: a failed upload above must not have cost the user an attachment
	for _, m := range removed {
		if err := s.objects.Delete(ctx, m.StorageKey); err != nil {
			s.discard(ctx, storageKeys(added))
			return nil, wrapMediaErr(MediaOpUpdate, err)
		}
	}

	post.Media = working
	s.logger.Debug("media reconciled",
		zap.Uint("post_id", post.ID),
		zap.Int("removed", len(removed)),
		zap.Int("added", len(added)))
	return added, nil
}

// DeleteAll removes every attachment of post from the object store and the media table.
func (s *MediaService) DeleteAll(ctx context.Context, post *models.Post) error {
	media, err := s.media.FindByPost(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("load media: %w", err)
	}
	for _, m := range media {
		if err := s.objects.Delete(ctx, m.StorageKey); err != nil {
			return wrapMediaErr(MediaOpDelete, err)
		}
		if err := s.media.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("delete media record %d: %w", m.ID, err)
		}
	}
	post.Media = nil
	return nil
}

// DetailView lists post's media ordered by id, independent of how the slice was loaded.
func (s *MediaService) DetailView(post *models.Post) []MediaDetail {
	return mediaDetails(post.Media, s.objects)
}

// Discard deletes objects whose rows never got committed. Failures are only logged.
func (s *MediaService) Discard(ctx context.Context, media []models.PostMedia) {
	s.discard(ctx, storageKeys(media))
}

func (s *MediaService) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil {
			s.logger.Warn("orphaned media object", zap.String("key", key), zap.Error(err))
		}
	}
}

// stageAndUpload copies the upload into a temp file, hands it to the object store and
// removes the temp file on every path.
func (s *MediaService) stageAndUpload(ctx context.Context, f UploadFile) (string, error) {
	if s.opts.MaxBytes > 0 && f.Size > s.opts.MaxBytes {
		return "", s.tooLarge(f)
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.opts.StagingDir, utils.StagingPrefix+"*"+safeExt(f.Filename))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var reader io.Reader = src
	if s.opts.MaxBytes > 0 {
		reader = io.LimitReader(src, s.opts.MaxBytes+1)
	}
	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if s.opts.MaxBytes > 0 && written > s.opts.MaxBytes {
		return "", s.tooLarge(f)
	}

	key, err := s.objects.Upload(ctx, tmp.Name())
	if err != nil {
		return "", fmt.Errorf("object store upload: %w", err)
	}
	return key, nil
}

func (s *MediaService) tooLarge(f UploadFile) error {
	return NewValidationError("media", fmt.Sprintf("%s exceeds the %d byte upload limit", f.Filename, s.opts.MaxBytes))
}

func mediaDetails(media []models.PostMedia, urls URLResolver) []MediaDetail {
	sorted := make([]models.PostMedia, len(media))
	copy(sorted, media)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := make([]MediaDetail, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, MediaDetail{
			Metadata:   m.Metadata,
			MediaType:  m.MediaType.String(),
			StorageKey: m.StorageKey,
			URL:        urls.PublicURL(m.StorageKey),
		})
	}
	return out
}

// wrapMediaErr reports faults as MediaIOError but lets rejected input through as is.
func wrapMediaErr(op MediaOp, err error) error {
	if IsValidationError(err) {
		return err
	}
	return &MediaIOError{Op: op, Err: err}
}

func isEmpty(f UploadFile) bool {
	return f.Open == nil || f.Size <= 0
}

func storageKeys(media []models.PostMedia) []string {
	keys := make([]string, 0, len(media))
	for _, m := range media {
		keys = append(keys, m.StorageKey)
	}
	return keys
}

// safeExt keeps a short extension so the object store can guess the content type.
func safeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext[min(1, len(ext)):] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
