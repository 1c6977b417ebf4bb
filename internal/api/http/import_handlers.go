package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/examprep/examprep-server/internal/importer"
)

// ImportQuestionsHandler serves POST /api/questions/import (multipart:
// file=bank.json|bank.xlsx). The upload is spooled to a temp file owned by
// this one request and removed on every exit path.
func ImportQuestionsHandler(imp *importer.Importer, uploadDir string, maxBytes int64, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer f.Close()

		format, err := importer.DetectFormat(hdr.Header.Get("Content-Type"), hdr.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Only Excel and JSON files are allowed")
			return
		}

		tmp, err := os.CreateTemp(uploadDir, "import-*")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()
		if _, err := io.Copy(tmp, f); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		report, err := imp.Run(r.Context(), tmp, format)
		if err != nil {
			log.Warn("import failed", "file", hdr.Filename, "err", err)
			var parseErr *importer.ParseError
			var valErr *importer.ValidationError
			switch {
			case errors.As(err, &parseErr), errors.As(err, &valErr):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}
