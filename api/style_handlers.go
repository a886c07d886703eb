package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KK-2k06/DreamInk/db"
	"github.com/KK-2k06/DreamInk/styles"
	"github.com/KK-2k06/DreamInk/stylize"
	"github.com/go-chi/chi/v5"
)

const historyTimeLayout = "2006-01-02 15:04:05"

type imageResponse struct {
	Image string `json:"image"`
}

type historyItem struct {
	ID               int64  `json:"id"`
	Style            string `json:"style"`
	OriginalImage    string `json:"original_image"`
	TransformedImage string `json:"transformed_image"`
	CreatedAt        string `json:"created_at"`
}

type historyResponse struct {
	History []historyItem `json:"history"`
}

// Stylize handles POST /api/style/{style}: multipart field "image" plus an
// optional "user_id" that turns on history recording.
func (s *Server) Stylize(r *http.Request) (any, error) {
	if s.styles == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "Style transformation is disabled on this server")
	}

	style := strings.ToLower(chi.URLParam(r, "style"))

	data, userID, err := s.readUpload(r)
	if err != nil {
		return nil, err
	}

	res, err := s.styles.Transform(r.Context(), stylize.Request{Style: style, Image: data, UserID: userID})
	if err != nil {
		return nil, styleError(style, err)
	}
	return imageResponse{Image: res.Image}, nil
}

func (s *Server) readUpload(r *http.Request) ([]byte, *int64, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		if mbe := (*http.MaxBytesError)(nil); errors.As(err, &mbe) {
			return nil, nil, CodedErrorf(http.StatusRequestEntityTooLarge, "Image exceeds %d MB", mbe.Limit>>20)
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, CodedErrorf(http.StatusBadRequest, "Invalid multipart form: %v", err)
		}
	}

	var userID *int64
	if v := strings.TrimSpace(r.FormValue("user_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, nil, CodedErrorf(http.StatusBadRequest, "Invalid user_id '%s'", v)
		}
		userID = &id
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, nil, CodedErrorf(http.StatusBadRequest, "No image uploaded")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, CodedErrorf(http.StatusBadRequest, "Failed to read image: %v", err)
	}
	return data, userID, nil
}

func styleError(style string, err error) error {
	switch {
	case errors.Is(err, styles.ErrUnknownStyle):
		return CodedErrorf(http.StatusBadRequest, "Invalid style '%s'", style)
	case errors.Is(err, stylize.ErrMissingImage):
		return CodedErrorf(http.StatusBadRequest, "No image uploaded")
	case errors.Is(err, stylize.ErrShuttingDown):
		return CodedError(http.StatusServiceUnavailable, err)
	case stylize.KindOf(err) == stylize.KindInput:
		return CodedError(http.StatusBadRequest, err)
	default:
		return CodedError(http.StatusInternalServerError, err)
	}
}

// ListHistory handles GET /api/history/{userId}, newest first.
func (s *Server) ListHistory(r *http.Request) (any, error) {
	userID, err := pathID(r, "userId")
	if err != nil {
		return nil, err
	}

	recs, err := s.history.History(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return historyResponse{History: toHistoryItems(recs)}, nil
}

// DeleteHistory handles DELETE /api/history/{historyId}. Unknown ids succeed.
func (s *Server) DeleteHistory(r *http.Request) (any, error) {
	id, err := pathID(r, "historyId")
	if err != nil {
		return nil, err
	}
	if err := s.history.DeleteHistory(r.Context(), id); err != nil {
		return nil, err
	}
	return messageBody{Message: "History item deleted successfully"}, nil
}

func pathID(r *http.Request, key string) (int64, error) {
	v := chi.URLParam(r, key)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, CodedErrorf(http.StatusBadRequest, "Invalid %s '%s'", key, v)
	}
	return id, nil
}

func toHistoryItems(recs []db.HistoryRecord) []historyItem {
	items := make([]historyItem, len(recs))
	for i, rec := range recs {
		items[i] = historyItem{
			ID:               rec.ID,
			Style:            rec.Style,
			OriginalImage:    rec.OriginalImage,
			TransformedImage: rec.TransformedImage,
			CreatedAt:        formatCreatedAt(rec.CreatedAt),
		}
	}
	return items
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(historyTimeLayout)
}
