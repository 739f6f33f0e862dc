package constants

// ============================================================================
// UPLOAD & TRIANGULATION ERRORS
// ============================================================================

const (
	ErrNoFilesUploaded    = "No files uploaded"
	ErrMultipartParse     = "Failed to parse multipart form"
	ErrOpenUploadedFile   = "Failed to open file: "
	ErrTriangulationAbort = "Triangulation aborted, no changes were committed"
)

// ============================================================================
// BASKET & CORRECTION ERRORS
// ============================================================================

const (
	ErrMissingBillNo     = "bill_no is required"
	ErrUnknownClientCode = "No client found for the given client_code"
	ErrNoPendingBill     = "No pending bill found for the given bill_no"
)

// ============================================================================
// PAYMENT & BILLING ERRORS
// ============================================================================

const (
	ErrClientNotFound     = "Client not found by code or name"
	ErrInvalidAmount      = "amount must be greater than zero"
	ErrPaymentConflict    = "Bill changed while applying payment, please retry"
	ErrNoMaterialOrClient = "material or client is required"
	ErrUnknownMaterial    = "No material found for the given name"
)
