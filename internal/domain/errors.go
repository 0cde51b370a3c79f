package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentNotParsed   = errors.New("document has not been parsed yet")
	ErrUnknownPlatform     = errors.New("unknown or undetectable platform")
	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateProduct    = errors.New("product sku or barcode already exists")
	ErrDuplicateAlias      = errors.New("alias already exists for this platform")
	ErrOrderEntryNotFound  = errors.New("order queue entry not found")
	ErrDuplicateOrderLine  = errors.New("order line already queued")
	ErrInvalidTransition   = errors.New("invalid workflow status transition")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrUnreadableDocument  = errors.New("document text layer could not be read")
	ErrDocumentBusy        = errors.New("document is already queued or processing")
	ErrInvalidStatus       = errors.New("invalid workflow status")
)
