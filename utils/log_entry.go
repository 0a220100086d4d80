package utils

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"vizhaa-backend/types"

	"github.com/gofiber/fiber/v2"
)

const maxLoggedBody = 4096

var sensitiveKeys = map[string]bool{
	"password":     true,
	"newpassword":  true,
	"otp":          true,
	"token":        true,
	"aadharnumber": true,
}

var authHeaderPattern = regexp.MustCompile(`(?i)(authorization:\s*bearer\s+)\S+`)

// CreateSanitizedLogEntry copies the request and response out of the fiber
// context with secrets, file contents and oversized bodies removed.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	requestHeaders := authHeaderPattern.ReplaceAllString(string(c.Request().Header.Header()), "${1}[REDACTED]")

	entry := types.LogEntry{
		Method:          string([]byte(c.Method())),
		URL:             string([]byte(c.OriginalURL())),
		RequestBody:     sanitizeRequestBody(c),
		ResponseBody:    redactJSON(string(append([]byte(nil), c.Response().Body()...))),
		RequestHeaders:  requestHeaders,
		ResponseHeaders: string(append([]byte(nil), c.Response().Header.Header()...)),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
	if id, ok := c.Locals("requestid").(string); ok {
		entry.RequestID = id
	}
	return entry
}

func sanitizeRequestBody(c *fiber.Ctx) string {
	if strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		formData := make(map[string]interface{})
		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}
		redactMap(formData)
		if b, err := json.Marshal(formData); err == nil {
			return string(b)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	return redactJSON(string(c.Body()))
}

// redactJSON masks sensitive keys in a JSON object body and truncates the rest.
func redactJSON(body string) string {
	if body == "" {
		return body
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		redactMap(payload)
		if b, err := json.Marshal(payload); err == nil {
			body = string(b)
		}
	}
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "...[TRUNCATED]"
	}
	return body
}

func redactMap(m map[string]interface{}) {
	for k, v := range m {
		if sensitiveKeys[strings.ToLower(k)] {
			m[k] = "[REDACTED]"
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			redactMap(nested)
		}
	}
}
