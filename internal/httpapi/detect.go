package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/langdetect"
	"horse.fit/langid/internal/reader"
)

// "ml" is accepted for clients of the older API.
const legacyMLMethod = "ml"

type detectRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

type detectResponse struct {
	Language   string           `json:"language"`
	Confidence int              `json:"confidence"`
	Method     string           `json:"method"`
	WordCount  int              `json:"wordCount"`
	Scores     []detector.Score `json:"scores,omitempty"`
}

type requestError struct {
	status  int
	reason  string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func (s *Server) handleDetectLanguage(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.opts.MaxBodyBytes)

	payload, err := s.readDetectRequest(c)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			rejectedDetections.WithLabelValues(reqErr.reason).Inc()
			return fail(c, reqErr.status, reqErr.message, nil)
		}
		s.logger.Error().Err(err).Msg("read detect request failed")
		return internalError(c, "Language detection failed")
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		rejectedDetections.WithLabelValues("no_text").Inc()
		return fail(c, http.StatusBadRequest, "No text provided", nil)
	}

	wordCount := reader.CountWords(text)
	if wordCount < s.opts.MinWordCount {
		rejectedDetections.WithLabelValues("too_short").Inc()
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("Text too short. Found %d words, minimum %d words required for accurate language detection.", wordCount, s.opts.MinWordCount),
			map[string]any{
				"wordCount":    wordCount,
				"minWordCount": s.opts.MinWordCount,
			})
	}

	method := strings.ToLower(strings.TrimSpace(payload.Method))
	if method == "" {
		method = detector.Method
	}
	if method == legacyMLMethod {
		method = langdetect.Method
	}

	started := time.Now()
	var response detectResponse
	switch method {
	case detector.Method:
		if s.detector == nil {
			return unavailable(c, "Detector is not configured")
		}
		result, scores := s.detector.DetectWithScores(text)
		response = newDetectResponse(result, wordCount)
		response.Scores = scores
	case langdetect.Method:
		if s.lingua == nil {
			return unavailable(c, "Lingua method is not enabled")
		}
		response = newDetectResponse(s.lingua.Detect(text), wordCount)
	default:
		rejectedDetections.WithLabelValues("invalid_method").Inc()
		return fail(c, http.StatusBadRequest, "Invalid method", map[string]any{
			"methods": s.methods(),
		})
	}

	detectionDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
	detectionsTotal.WithLabelValues(method, response.Language).Inc()
	detectionWords.Observe(float64(wordCount))

	return success(c, response)
}

func newDetectResponse(result detector.Result, wordCount int) detectResponse {
	return detectResponse{
		Language:   result.Language,
		Confidence: result.Confidence,
		Method:     result.Method,
		WordCount:  wordCount,
	}
}

func (s *Server) readDetectRequest(c echo.Context) (detectRequest, error) {
	mediaType, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case echo.MIMEMultipartForm:
		return s.readMultipartRequest(c)
	case echo.MIMEApplicationForm:
		return detectRequest{
			Text:   c.FormValue("text"),
			Method: c.FormValue("method"),
		}, nil
	default:
		return readJSONRequest(c.Request().Body)
	}
}

func readJSONRequest(body io.Reader) (detectRequest, error) {
	var payload detectRequest
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return detectRequest{}, nil
		}
		return detectRequest{}, bodyError(err, "Request body must be a JSON object with a text field")
	}
	return payload, nil
}

func (s *Server) readMultipartRequest(c echo.Context) (detectRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return detectRequest{}, bodyError(err, "Invalid multipart form")
	}

	payload := detectRequest{
		Text:   firstValue(form.Value["text"]),
		Method: firstValue(form.Value["method"]),
	}

	files := form.File["file"]
	if len(files) == 0 {
		return payload, nil
	}

	text, err := extractUpload(files[0])
	if err != nil {
		return detectRequest{}, err
	}
	// An uploaded file takes precedence over the text field.
	payload.Text = text
	return payload, nil
}

func extractUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read uploaded file: %w", err)
	}

	text, err := reader.ExtractText(header.Filename, header.Header.Get(echo.HeaderContentType), body)
	switch {
	case errors.Is(err, reader.ErrUnsupportedType):
		return "", &requestError{
			status:  http.StatusUnsupportedMediaType,
			reason:  "unsupported_file",
			message: "Unsupported file type. Upload a .txt or .html file",
		}
	case err != nil:
		return "", &requestError{
			status:  http.StatusBadRequest,
			reason:  "unreadable_file",
			message: "Could not extract text from file",
		}
	}
	return text, nil
}

func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &requestError{
			status:  http.StatusRequestEntityTooLarge,
			reason:  "too_large",
			message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
		}
	}
	return &requestError{
		status:  http.StatusBadRequest,
		reason:  "invalid_body",
		message: message,
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
