package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"packslip/internal/config"
	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/internal/parser"
	"packslip/internal/pipeline"
	"packslip/internal/port"
	"packslip/internal/repository/memory"
	"packslip/internal/service"
	"packslip/mocks"
)

type docFixture struct {
	docRepo    *memory.DocumentRepo
	catalog    *memory.CatalogRepo
	queue      *memory.OrderQueueRepo
	storage    *mocks.MockObjectStorage
	dispatcher *mocks.MockDispatcher
	layer      *stubLayer
	svc        service.DocumentService
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()
	f := &docFixture{
		docRepo:    memory.NewDocumentRepo(),
		catalog:    memory.NewCatalogRepo(),
		queue:      memory.NewOrderQueueRepo(),
		storage:    new(mocks.MockObjectStorage),
		dispatcher: new(mocks.MockDispatcher),
		layer:      &stubLayer{doc: amazonSlip()},
	}
	profiles := parser.DefaultProfiles()
	p := pipeline.New(f.layer, nil, profiles, pipeline.DefaultConfig())
	f.svc = service.NewDocumentService(
		f.docRepo,
		f.storage,
		p,
		identifier.NewResolver(f.catalog),
		service.NewIngestionService(f.queue, profiles),
		f.dispatcher,
		&config.S3Config{Bucket: "slips", MaxFileSizeMB: 1},
	)
	return f
}

func (f *docFixture) queuedDoc(t *testing.T, attempts int) *domain.ShipmentDocument {
	t.Helper()
	doc := &domain.ShipmentDocument{
		ID:            uuid.New(),
		ContentType:   "application/pdf",
		FileType:      domain.FileTypePDF,
		S3Bucket:      "slips",
		S3Key:         "documents/x/slip.pdf",
		ParseStatus:   domain.ParseStatusQueued,
		ParseAttempts: attempts,
	}
	require.NoError(t, f.docRepo.Create(context.Background(), doc))
	claimed, err := f.docRepo.ClaimByID(context.Background(), doc.ID)
	require.NoError(t, err)
	return claimed
}

func TestDocumentService_Upload(t *testing.T) {
	f := newDocFixture(t)
	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(in port.PutObjectInput) bool {
		return in.Ref.Bucket == "slips" && in.ContentType == "application/pdf" &&
			in.Metadata["platform"] == "amazon" && in.Metadata["original-name"] == "slip.pdf"
	})).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	doc, err := f.svc.Upload(context.Background(), service.UploadInput{
		Platform: parser.PlatformAmazon,
		File:     bytes.NewReader(pdfHeader),
		FileName: "slip.pdf",
		Size:     int64(len(pdfHeader)),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusQueued, doc.ParseStatus)
	assert.Equal(t, domain.FileTypePDF, doc.FileType)
	assert.Equal(t, "documents/"+doc.ID.String()+"/slip.pdf", doc.S3Key)

	stored, err := f.docRepo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, parser.PlatformAmazon, stored.Platform)
	f.dispatcher.AssertCalled(t, "Dispatch", mock.Anything, doc.ID)
}

func TestDocumentService_UploadRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    service.UploadInput
		expected error
	}{
		{
			name:     "unknown platform",
			input:    service.UploadInput{Platform: "etsy", File: bytes.NewReader(pdfHeader), FileName: "a.pdf"},
			expected: domain.ErrUnknownPlatform,
		},
		{
			name:     "too large",
			input:    service.UploadInput{File: bytes.NewReader(pdfHeader), FileName: "a.pdf", Size: 2 * 1024 * 1024},
			expected: domain.ErrFileTooLarge,
		},
		{
			name:     "bad extension",
			input:    service.UploadInput{File: bytes.NewReader(pdfHeader), FileName: "a.docx"},
			expected: domain.ErrUnsupportedFileType,
		},
		{
			name:     "content does not match extension",
			input:    service.UploadInput{File: bytes.NewReader([]byte("plain text")), FileName: "a.pdf"},
			expected: domain.ErrUnsupportedFileType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocFixture(t)
			_, err := f.svc.Upload(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.expected)
			f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestDocumentService_UploadStorageFailure(t *testing.T) {
	f := newDocFixture(t)
	f.storage.On("Put", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	_, err := f.svc.Upload(context.Background(), service.UploadInput{
		File: bytes.NewReader(pdfHeader), FileName: "slip.pdf",
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	_, total, _ := f.docRepo.List(context.Background(), 0, 10)
	assert.Equal(t, 0, total)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestDocumentService_UploadRemovesObjectWhenRecordFails(t *testing.T) {
	f := newDocFixture(t)
	repo := new(mocks.MockDocumentRepo)
	f.svc = service.NewDocumentService(
		repo, f.storage, pipeline.New(f.layer, nil, nil, pipeline.DefaultConfig()),
		identifier.NewResolver(f.catalog), service.NewIngestionService(f.queue, nil),
		f.dispatcher, &config.S3Config{Bucket: "slips", MaxFileSizeMB: 1},
	)
	f.storage.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Delete", mock.Anything, mock.MatchedBy(func(ref port.ObjectRef) bool {
		return ref.Bucket == "slips"
	})).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.svc.Upload(context.Background(), service.UploadInput{
		File: bytes.NewReader(pdfHeader), FileName: "slip.pdf",
	})

	require.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestDocumentService_ParseDocument(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	mug := &domain.Product{ID: uuid.New(), SKU: "MUG-01", Name: "Coffee mug"}
	require.NoError(t, f.catalog.CreateProduct(ctx, mug))
	f.storage.On("Get", mock.Anything, port.ObjectRef{Bucket: "slips", Key: "documents/x/slip.pdf"}, int64(1024*1024)).
		Return(pdfHeader, nil)

	doc := f.queuedDoc(t, 1)
	f.svc.ParseDocument(ctx, doc, 3)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusCompleted, stored.ParseStatus)
	assert.Equal(t, parser.PlatformAmazon, stored.Platform)
	assert.Equal(t, 2, stored.RowsExtracted)
	assert.Equal(t, 2, stored.Inserted)
	assert.Equal(t, 1, stored.UnresolvedCount)
	require.NotNil(t, stored.ParsedAt)

	entries, _, err := f.queue.List(ctx, domain.OrderQueueFilter{DocumentID: &doc.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "403-1234567-7654321", e.OrderID)
		assert.Equal(t, doc.FileRef(), e.SourceFileRef)
	}

	diag, err := f.svc.GetDiagnostics(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, diag.Pages, 1)
	assert.Len(t, diag.Pages[0].Rows, 2)
}

func TestDocumentService_ParseDocumentTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.storage.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(pdfHeader, nil)

	f.svc.ParseDocument(ctx, f.queuedDoc(t, 1), 3)
	second := f.queuedDoc(t, 1)
	f.svc.ParseDocument(ctx, second, 3)

	stored, err := f.docRepo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Inserted)
	assert.Equal(t, 2, stored.DuplicatesSkipped)
	assert.Equal(t, 2, f.queue.Len())
}

func TestDocumentService_ParseDocumentRequeuesTransientFailure(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.storage.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503"))
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	doc := f.queuedDoc(t, 1)
	f.svc.ParseDocument(ctx, doc, 3)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusQueued, stored.ParseStatus)
	assert.Contains(t, stored.ParseError, "503")
	f.dispatcher.AssertCalled(t, "Dispatch", mock.Anything, doc.ID)
}

func TestDocumentService_ParseDocumentFailsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.storage.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503"))

	doc := f.queuedDoc(t, 3)
	f.svc.ParseDocument(ctx, doc, 3)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusFailed, stored.ParseStatus)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestDocumentService_ParseDocumentPermanentFailure(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.layer.err = errors.New("xref table broken")
	f.storage.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(pdfHeader, nil)

	doc := f.queuedDoc(t, 1)
	f.svc.ParseDocument(ctx, doc, 5)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusFailed, stored.ParseStatus)
	assert.Contains(t, stored.ParseError, "xref table broken")

	_, err = f.svc.GetDiagnostics(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotParsed)
}

func TestDocumentService_ParseDocumentOversizedObjectFails(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.storage.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrFileTooLarge)

	doc := f.queuedDoc(t, 1)
	f.svc.ParseDocument(ctx, doc, 5)

	stored, err := f.docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusFailed, stored.ParseStatus)
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	doc := f.queuedDoc(t, 0)
	f.storage.On("PresignGet", mock.Anything,
		port.ObjectRef{Bucket: "slips", Key: "documents/x/slip.pdf"}, mock.AnythingOfType("time.Duration"), "").
		Return("https://example.test/signed", nil)

	url, err := f.svc.DownloadURL(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/signed", url)

	_, err = f.svc.DownloadURL(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_RetryParse(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture(t)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	doc := f.queuedDoc(t, 2)
	_, err := f.svc.RetryParse(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentBusy)

	doc.ParseStatus = domain.ParseStatusFailed
	require.NoError(t, f.docRepo.UpdateParseResult(ctx, doc))

	retried, err := f.svc.RetryParse(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusQueued, retried.ParseStatus)
	assert.Equal(t, 0, retried.ParseAttempts)
	f.dispatcher.AssertCalled(t, "Dispatch", mock.Anything, doc.ID)

	_, err = f.svc.RetryParse(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_DryRun(t *testing.T) {
	f := newDocFixture(t)

	diag, err := f.svc.DryRun(context.Background(), service.DryRunInput{Data: pdfHeader, FileName: "slip.pdf"})

	require.NoError(t, err)
	assert.Equal(t, parser.PlatformAmazon, diag.Platform)
	assert.Len(t, diag.Rows(), 2)
	assert.Equal(t, 0, f.queue.Len())

	_, err = f.svc.DryRun(context.Background(), service.DryRunInput{Data: []byte("hello"), FileName: "x.txt"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
