package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// Platform identifies the marketplace a shipment document came from.
type Platform string

// ParseStatus represents the lifecycle of a shipment document parse.
type ParseStatus string

const (
	ParseStatusQueued     ParseStatus = "queued"
	ParseStatusProcessing ParseStatus = "processing"
	ParseStatusCompleted  ParseStatus = "completed"
	ParseStatusFailed     ParseStatus = "failed"
)

// ColumnKey is the semantic meaning of a column band.
type ColumnKey string

const (
	ColumnIdentifierPrimary   ColumnKey = "identifier_primary"
	ColumnIdentifierSecondary ColumnKey = "identifier_secondary"
	ColumnDescription         ColumnKey = "description"
	ColumnQuantity            ColumnKey = "quantity"
)

// IsCode reports whether cells of this column are assembled as codes
// (no separator, noise stripped) rather than free text.
func (k ColumnKey) IsCode() bool {
	return k == ColumnIdentifierPrimary || k == ColumnIdentifierSecondary
}

// ValidColumnKeys is the closed set of column keys.
var ValidColumnKeys = map[ColumnKey]bool{
	ColumnIdentifierPrimary:   true,
	ColumnIdentifierSecondary: true,
	ColumnDescription:         true,
	ColumnQuantity:            true,
}

// QuantitySource records which strategy produced a quantity.
type QuantitySource string

const (
	QuantitySourceExplicitLabel QuantitySource = "explicit_label"
	QuantitySourceColumn        QuantitySource = "column"
	QuantitySourceProximity     QuantitySource = "proximity"
	QuantitySourceOCR           QuantitySource = "ocr"
	QuantitySourceDefaultGuess  QuantitySource = "default_guess"
)

// Confidence is a coarse confidence grade.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RowSource says whether a row came from the text layer or from OCR text.
type RowSource string

const (
	RowSourceTextLayer RowSource = "text_layer"
	RowSourceOCR       RowSource = "ocr"
)

// WorkflowStatus is the order queue entry lifecycle.
type WorkflowStatus string

const (
	WorkflowPending  WorkflowStatus = "pending"
	WorkflowListed   WorkflowStatus = "listed"
	WorkflowArchived WorkflowStatus = "archived"
)

// ValidWorkflowStatuses is the closed set of workflow statuses.
var ValidWorkflowStatuses = map[WorkflowStatus]bool{
	WorkflowPending:  true,
	WorkflowListed:   true,
	WorkflowArchived: true,
}

// workflowTransitions lists the only allowed moves: pending -> listed -> archived.
var workflowTransitions = map[WorkflowStatus]WorkflowStatus{
	WorkflowPending: WorkflowListed,
	WorkflowListed:  WorkflowArchived,
}

// CanTransition reports whether an entry may move from one status to another.
func CanTransition(from, to WorkflowStatus) bool {
	next, ok := workflowTransitions[from]
	return ok && next == to
}

// IsActive reports whether entries in this status take part in duplicate
// detection and pick-list aggregation.
func (s WorkflowStatus) IsActive() bool {
	return s == WorkflowPending || s == WorkflowListed
}

// ResolutionStatus is the binary outcome of identifier lookup.
type ResolutionStatus string

const (
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionUnresolved ResolutionStatus = "unresolved"
)

// MatchSource records which table produced a resolution.
type MatchSource string

const (
	MatchSourceAlias   MatchSource = "alias"
	MatchSourceSKU     MatchSource = "sku"
	MatchSourceBarcode MatchSource = "barcode"
)
