package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"packslip/internal/config"
	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/internal/pipeline"
	"packslip/internal/port"
	"packslip/internal/storage/s3"
)

// UploadInput is the DTO for uploading a shipment document.
type UploadInput struct {
	// Platform may be empty, in which case it is detected during parsing.
	Platform domain.Platform
	File     io.ReadSeeker
	FileName string
	Size     int64
}

// DryRunInput is the DTO for parsing a file without persisting anything.
type DryRunInput struct {
	Platform domain.Platform
	Data     []byte
	FileName string
}

// DocumentService defines the shipment document contract.
type DocumentService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.ShipmentDocument, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error)
	List(ctx context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error)
	GetDiagnostics(ctx context.Context, docID uuid.UUID) (*domain.DocumentDiagnostic, error)
	RetryParse(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error)
	DryRun(ctx context.Context, input DryRunInput) (*domain.DocumentDiagnostic, error)
	DownloadURL(ctx context.Context, docID uuid.UUID) (string, error)
	ParseDocument(ctx context.Context, doc *domain.ShipmentDocument, maxAttempts int)
}

type documentService struct {
	docRepo    port.DocumentRepository
	storage    port.ObjectStorage
	pipeline   *pipeline.Pipeline
	resolver   *identifier.Resolver
	ingestion  IngestionService
	dispatcher port.ParseDispatcher
	cfg        *config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	p *pipeline.Pipeline,
	resolver *identifier.Resolver,
	ingestion IngestionService,
	dispatcher port.ParseDispatcher,
	cfg *config.S3Config,
) DocumentService {
	return &documentService{
		docRepo:    docRepo,
		storage:    storage,
		pipeline:   p,
		resolver:   resolver,
		ingestion:  ingestion,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// detectFileType checks the extension and the sniffed content type agree on
// an allowed file type.
func detectFileType(fileName string, head []byte) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", domain.ErrUnsupportedFileType
	}
	detected, ok := domain.AllowedContentTypes[http.DetectContentType(head)]
	if !ok || detected != fileType {
		return "", domain.ErrUnsupportedFileType
	}
	return fileType, nil
}

func (s *documentService) Upload(ctx context.Context, input UploadInput) (*domain.ShipmentDocument, error) {
	if input.Platform != "" {
		if _, err := s.pipeline.Profiles().Get(input.Platform); err != nil {
			return nil, err
		}
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	fileType, err := detectFileType(input.FileName, buf[:n])
	if err != nil {
		return nil, err
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	docID := uuid.New()
	doc := &domain.ShipmentDocument{
		ID:           docID,
		Platform:     input.Platform,
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     input.Size,
		ContentType:  domain.AllowedFileTypes[fileType],
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3.DocumentKey(docID, input.FileName),
		ParseStatus:  domain.ParseStatusQueued,
		Diagnostics:  json.RawMessage("{}"),
	}

	log.Printf("documentService.Upload: uploading %s (%s, %d bytes, platform=%q)",
		input.FileName, doc.ContentType, input.Size, input.Platform)

	// The object must exist before the record becomes claimable.
	ref := objectRef(doc)
	if err := s.storage.Put(ctx, port.PutObjectInput{
		Ref:         ref,
		Body:        input.File,
		ContentType: doc.ContentType,
		Size:        input.Size,
		Metadata: map[string]string{
			"document-id":   docID.String(),
			"platform":      string(input.Platform),
			"original-name": input.FileName,
		},
	}); err != nil {
		log.Printf("documentService.Upload: S3 upload failed for %s: %v", docID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			log.Printf("documentService.Upload: orphaned object %s left behind: %v", ref.Key, delErr)
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}

	s.dispatch(ctx, doc.ID)
	return doc, nil
}

func (s *documentService) dispatch(ctx context.Context, docID uuid.UUID) {
	if err := s.dispatcher.Dispatch(ctx, docID); err != nil {
		log.Printf("documentService.dispatch: document %s stays queued: %v", docID, err)
	}
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

func (s *documentService) GetDiagnostics(ctx context.Context, docID uuid.UUID) (*domain.DocumentDiagnostic, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(doc.Diagnostics) == 0 || string(doc.Diagnostics) == "{}" {
		return nil, domain.ErrDocumentNotParsed
	}
	var diag domain.DocumentDiagnostic
	if err := json.Unmarshal(doc.Diagnostics, &diag); err != nil {
		return nil, fmt.Errorf("decoding diagnostics of %s: %w", docID, err)
	}
	return &diag, nil
}

// ParseDocument downloads, parses, resolves and ingests one document. The doc
// must already be in processing status with ParseAttempts incremented.
// Ingestion is idempotent, so a retried parse never double-counts rows.
func (s *documentService) ParseDocument(ctx context.Context, doc *domain.ShipmentDocument, maxAttempts int) {
	data, err := s.storage.Get(ctx, objectRef(doc), s.cfg.MaxFileSizeMB*1024*1024)
	if err != nil {
		s.handleParseError(ctx, doc, fmt.Errorf("downloading file: %w", err), maxAttempts)
		return
	}

	result, err := s.pipeline.Parse(ctx, pipeline.ParseInput{
		Data:        data,
		ContentType: doc.ContentType,
		Platform:    doc.Platform,
		FileRef:     doc.ID.String(),
	})
	if err != nil {
		s.handleParseError(ctx, doc, err, maxAttempts)
		return
	}
	platform := result.Profile.Platform

	ids := make([]string, len(result.Rows))
	for i := range result.Rows {
		ids[i] = result.Rows[i].MarketplaceIdentifier
	}
	resolutions, err := s.resolver.ResolveAll(ctx, ids, platform)
	if err != nil {
		s.handleParseError(ctx, doc, fmt.Errorf("resolving identifiers: %w", err), maxAttempts)
		return
	}

	docID := doc.ID
	ingested, err := s.ingestion.Ingest(ctx, IngestInput{
		Platform:    platform,
		Rows:        result.Rows,
		Resolutions: resolutions,
		FileRef:     doc.FileRef(),
		DocumentID:  &docID,
	})
	if err != nil {
		s.handleParseError(ctx, doc, fmt.Errorf("ingesting rows: %w", err), maxAttempts)
		return
	}

	diagJSON, err := json.Marshal(result.Diagnostic)
	if err != nil {
		log.Printf("documentService.ParseDocument: encoding diagnostics for %s: %v", doc.ID, err)
		diagJSON = json.RawMessage("{}")
	}

	now := time.Now().UTC()
	doc.Platform = platform
	doc.ParseStatus = domain.ParseStatusCompleted
	doc.ParseError = ""
	doc.RowsExtracted = len(result.Rows)
	doc.Inserted = ingested.Inserted
	doc.DuplicatesSkipped = ingested.DuplicatesSkipped
	doc.UnresolvedCount = ingested.UnresolvedCount
	doc.Diagnostics = diagJSON
	doc.ParsedAt = &now

	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.ParseDocument: failed to save results for %s: %v", doc.ID, err)
		return
	}
	log.Printf("documentService.ParseDocument: document %s parsed (%d rows, %d inserted, %d unresolved)",
		doc.ID, doc.RowsExtracted, doc.Inserted, doc.UnresolvedCount)
}

// handleParseError requeues the document when the failure may be transient
// and attempts remain. Otherwise parsing is marked as permanently failed.
func (s *documentService) handleParseError(ctx context.Context, doc *domain.ShipmentDocument, parseErr error, maxAttempts int) {
	if pipeline.IsPermanent(parseErr) || errors.Is(parseErr, domain.ErrFileTooLarge) || doc.ParseAttempts >= maxAttempts {
		s.failParsing(ctx, doc, fmt.Sprintf("parsing document: %v", parseErr))
		return
	}

	doc.ParseStatus = domain.ParseStatusQueued
	doc.ParseError = fmt.Sprintf("attempt %d failed, queued for retry: %v", doc.ParseAttempts, parseErr)
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.handleParseError: failed to queue document %s: %v", doc.ID, err)
		return
	}
	log.Printf("documentService.handleParseError: document %s queued for retry (attempt %d/%d): %v",
		doc.ID, doc.ParseAttempts, maxAttempts, parseErr)
	s.dispatch(ctx, doc.ID)
}

func (s *documentService) failParsing(ctx context.Context, doc *domain.ShipmentDocument, errMsg string) {
	log.Printf("documentService.failParsing: document %s failed: %s", doc.ID, errMsg)
	doc.ParseStatus = domain.ParseStatusFailed
	doc.ParseError = errMsg
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.failParsing: failed to update status for %s: %v", doc.ID, err)
	}
}

func (s *documentService) RetryParse(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.ParseStatus == domain.ParseStatusQueued || doc.ParseStatus == domain.ParseStatusProcessing {
		return nil, domain.ErrDocumentBusy
	}

	doc.ParseStatus = domain.ParseStatusQueued
	doc.ParseAttempts = 0
	doc.ParseError = ""
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		return nil, fmt.Errorf("resetting document for retry: %w", err)
	}

	log.Printf("documentService.RetryParse: retrying parsing for document %s", docID)
	s.dispatch(ctx, doc.ID)
	return doc, nil
}

func (s *documentService) DryRun(ctx context.Context, input DryRunInput) (*domain.DocumentDiagnostic, error) {
	head := input.Data
	if len(head) > 512 {
		head = head[:512]
	}
	fileType, err := detectFileType(input.FileName, head)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Parse(ctx, pipeline.ParseInput{
		Data:        input.Data,
		ContentType: domain.AllowedFileTypes[fileType],
		Platform:    input.Platform,
		FileRef:     input.FileName,
	})
	if err != nil {
		return nil, err
	}
	return result.Diagnostic, nil
}

// DownloadURL returns a presigned link to the stored original file.
func (s *documentService) DownloadURL(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	expiry := time.Duration(s.cfg.PresignExpiry) * time.Second
	url, err := s.storage.PresignGet(ctx, objectRef(doc), expiry, doc.OriginalName)
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", docID, err)
	}
	return url, nil
}

func objectRef(doc *domain.ShipmentDocument) port.ObjectRef {
	return port.ObjectRef{Bucket: doc.S3Bucket, Key: doc.S3Key}
}
