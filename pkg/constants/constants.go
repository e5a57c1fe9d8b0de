package constants

import "time"

// Application constants
const (
	AppName = "swiftconvert"
)

// File handling
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Upload size limit; the store deletes oversized files as a side effect.
	MaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory names under the data root.
	UploadDirName = "uploads"
	OutputDirName = "converted"

	// Removal retry policy for transiently locked files.
	RemoveRetries    = 3
	RemoveRetryDelay = 500 * time.Millisecond

	// Stale files older than this are swept opportunistically after each
	// successful conversion.
	DefaultSweepMaxAge = 24 * time.Hour
)

// OCR processing
const (
	// Rasterization density for PDF pages fed to OCR, and the range
	// per-request overrides are clamped to.
	DefaultOCRDPI = 300
	MinOCRDPI     = 72
	MaxOCRDPI     = 1200

	// Texts shorter than this are not worth classifying.
	MinClassifiableTextLength = 20
)

// Document rendering
const (
	// Hard timeout for the external document rendering tool (LibreOffice).
	RenderToolTimeout = 60 * time.Second

	// Plain-text PDF rendering layout.
	PDFWrapColumns = 80
	PDFLineHeight  = 15.0
	PDFMargin      = 50.0
)

// Classification
const (
	// Best-category scores below this fall back to the "general" category.
	// Heuristic default; tunable via config.
	DefaultClassifierThreshold = 0.2
)

// HTTP
const (
	DefaultPort            = 3001
	DefaultShutdownTimeout = 10 * time.Second
	MaxMultipartMemory     = 32 << 20
)
