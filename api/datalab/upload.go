package datalab

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"StockBook/api"
	"StockBook/api/auth"
	"StockBook/api/constants"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// readOptionalUpload pulls one named file out of the multipart form and
// normalizes it. Missing or unreadable files come back nil: an absent
// source contributes zero records, it is not an error.
func readOptionalUpload(r *http.Request, name string) *Table {
	file, header, err := r.FormFile(name)
	if err != nil {
		return nil
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil
	}
	return ReadTable(data, header.Filename)
}

// TriangulateHandler runs one triangulation batch end to end: normalize the
// three uploads, classify every dispatch row, commit postings and basket
// entries atomically.
func TriangulateHandler(pgxPool *pgxpool.Pool, threshold int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMultipartParse)
			return
		}
		userID := r.FormValue("user_id")
		if userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}
		userName := auth.UsernameFor(userID)
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}

		ref := readOptionalUpload(r, "reference_file")
		fin := readOptionalUpload(r, "finance_file")
		disp := readOptionalUpload(r, "dispatch_file")
		if ref == nil && fin == nil && disp == nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFilesUploaded)
			return
		}

		run := Triangulate(ref, fin, disp, threshold, time.Now())
		if err := CommitRun(r.Context(), pgxPool, run); err != nil {
			logger.Audit(fmt.Sprintf("Triangulation by %s failed: %v", userName, err))
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTriangulationAbort+": "+err.Error())
			return
		}

		logger.Audit(fmt.Sprintf("Triangulation by %s committed: %d postings, %d basket entries", userName, len(run.Postings), len(run.Baskets)))
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"committed": true,
			"postings":  len(run.Postings),
			"baskets":   len(run.Baskets),
		})
	}
}
