package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/service"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

const sniffLen = 3072

// AllowedContentTypes is the upload whitelist.
var AllowedContentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"application/dicom",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
}

// Upload is one incoming file.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// PatientExporter supplies the rows of a patient export.
type PatientExporter interface {
	ExportPatients(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error)
}

type FileService interface {
	UploadFile(ctx context.Context, form *model.FileUploadForm, upload Upload) (*model.PatientFile, error)
	GetFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, error)
	OpenFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, io.ReadCloser, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
	ListFiles(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error)
	ExportPatients(ctx context.Context, filter *model.PatientFilter, w io.Writer) (int, error)
}

type Options struct {
	MaxUploadBytes int64
	ExportMaxRows  int
}

type Service struct {
	repo     repository.FileRepository
	patients service.PatientChecker
	exporter PatientExporter
	store    Store
	events   event.Emitter
	opts     Options
}

func NewService(repo repository.FileRepository, patients service.PatientChecker, exporter PatientExporter, store Store, events event.Emitter, opts Options) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		exporter: exporter,
		store:    store,
		events:   events,
		opts:     opts,
	}
}

// UploadFile validates the content type by sniffing the body, stores the blob
// and records its metadata. The blob is removed again when the row cannot be
// written.
func (s *Service) UploadFile(ctx context.Context, form *model.FileUploadForm, upload Upload) (*model.PatientFile, error) {
	patientID, err := uuid.Parse(form.PatientID)
	if err != nil {
		return nil, apperrors.InvalidField("patientId", "patientId must be a valid id")
	}
	if upload.Size > s.opts.MaxUploadBytes {
		return nil, tooLarge(s.opts.MaxUploadBytes)
	}
	if err := service.EnsurePatient(ctx, s.patients, patientID); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperrors.BadRequest("failed to read upload", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperrors.InvalidField("file", "file must not be empty")
	}

	contentType, ok := detectContentType(head)
	if !ok {
		return nil, apperrors.InvalidField("file", "file type is not allowed")
	}

	f := &model.PatientFile{
		PatientID:    patientID,
		FileName:     sanitizeFileName(upload.FileName),
		ContentType:  contentType,
		Category:     form.Category,
		Description:  strings.TrimSpace(form.Description),
		UploadedByID: model.ActorID(ctx),
	}
	if f.Category == "" {
		f.Category = model.FileCategoryOther
	}
	f.ID = uuid.New()
	f.StorageKey = storageKey(patientID, f.ID, f.FileName)

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Body), s.opts.MaxUploadBytes+1)
	size, err := s.store.Save(ctx, f.StorageKey, body)
	if err != nil {
		s.discard(ctx, f.StorageKey)
		return nil, apperrors.Internal(err)
	}
	if size > s.opts.MaxUploadBytes {
		s.discard(ctx, f.StorageKey)
		return nil, tooLarge(s.opts.MaxUploadBytes)
	}
	f.SizeBytes = size

	if err := s.repo.Create(ctx, f); err != nil {
		s.discard(ctx, f.StorageKey)
		return nil, service.MapError(err, "file")
	}

	s.events.Emit(ctx, model.AggregateFile, model.ActionCreated, f.ID, &patientID, map[string]interface{}{
		"fileName":  f.FileName,
		"category":  f.Category,
		"sizeBytes": f.SizeBytes,
	})
	return f, nil
}

func (s *Service) GetFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "file")
	}
	return f, nil
}

// OpenFile returns the metadata and a reader for the content. The caller
// closes the reader.
func (s *Service) OpenFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, io.ReadCloser, error) {
	f, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, nil, apperrors.NotFound("file content")
		}
		return nil, nil, apperrors.Internal(err)
	}
	return f, rc, nil
}

func (s *Service) DeleteFile(ctx context.Context, id uuid.UUID) error {
	f, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "file")
	}
	s.discard(ctx, f.StorageKey)

	s.events.Emit(ctx, model.AggregateFile, model.ActionDeleted, id, &f.PatientID, nil)
	return nil
}

func (s *Service) ListFiles(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error) {
	filter.Normalize()
	files, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return files, total, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("storage_key", key).Msg("failed to remove blob")
	}
}

func detectContentType(head []byte) (string, bool) {
	mtype := mimetype.Detect(head)
	for _, allowed := range AllowedContentTypes {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	if len(name) > 255 {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:255-len(ext)] + ext
	}
	return name
}

func storageKey(patientID, fileID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 16 {
		ext = ""
	}
	return patientID.String() + "/" + fileID.String() + ext
}

func tooLarge(max int64) error {
	return apperrors.InvalidField("file", fmt.Sprintf("file must be at most %d MB", max/(1<<20)))
}
